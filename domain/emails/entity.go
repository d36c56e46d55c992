package emails

import (
	"time"
)

// Contact is an email address with an optional display name.
type Contact struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Email is a message node together with its sender, recipients and labels.
type Email struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Snippet   string    `json:"snippet"`
	Date      time.Time `json:"date"`
	IsRead    bool      `json:"is_read"`
	IsStarred bool      `json:"is_starred"`
	ThreadID  *string   `json:"thread_id"`
	From      Contact   `json:"from"`
	To        []Contact `json:"to"`
	CC        []Contact `json:"cc"`
	Labels    []string  `json:"labels"`

	// Embedding is never serialized to clients.
	Embedding []float32 `json:"-"`
}

// Participants returns the distinct addresses of the sender and the direct
// recipients.
func (e *Email) Participants() []string {
	seen := make(map[string]struct{}, len(e.To)+1)
	out := make([]string, 0, len(e.To)+1)
	add := func(addr string) {
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	add(e.From.Email)
	for _, c := range e.To {
		add(c.Email)
	}
	return out
}
