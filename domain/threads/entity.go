package threads

import (
	"sort"
	"time"

	"github.com/Kantosaurus/test-01/domain/emails"
)

// Thread is the derived view over every email sharing a thread id.
type Thread struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	Emails           []emails.Email `json:"emails"`
	LastMessageDate  time.Time      `json:"last_message_date"`
	ParticipantCount int            `json:"participant_count"`
}

// BuildThread orders the emails oldest first and derives the thread
// metadata. It returns nil for an empty input.
func BuildThread(id string, items []emails.Email) *Thread {
	if len(items) == 0 {
		return nil
	}

	ordered := make([]emails.Email, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	participants := make(map[string]struct{})
	last := ordered[0].Date
	for i := range ordered {
		if ordered[i].Date.After(last) {
			last = ordered[i].Date
		}
		for _, addr := range ordered[i].Participants() {
			participants[addr] = struct{}{}
		}
	}

	return &Thread{
		ID:               id,
		Subject:          ordered[0].Subject,
		Emails:           ordered,
		LastMessageDate:  last,
		ParticipantCount: len(participants),
	}
}
