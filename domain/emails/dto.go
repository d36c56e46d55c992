package emails

// ListParams is the parsed query of GET /api/emails.
type ListParams struct {
	Filter
	Page  int
	Limit int
}

// ListResponse is one page of emails.
type ListResponse struct {
	Emails []Email `json:"emails"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// CreateEmailRequest is the request DTO for composing an email
type CreateEmailRequest struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	To      []string `json:"to"`
	CC      []string `json:"cc"`
	ReplyTo *string  `json:"reply_to"`
}

// UpdateEmailRequest is the request DTO for PATCH /api/emails/:id
type UpdateEmailRequest struct {
	IsRead    *bool    `json:"is_read"`
	IsStarred *bool    `json:"is_starred"`
	Labels    []string `json:"labels"`
}
