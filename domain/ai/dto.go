package ai

// Search modes reported in SearchResponse.
const (
	ModeSemantic = "semantic"
	ModeText     = "text"
)

// SummarizeRequest names the content to summarize. Text wins when present,
// then EmailID, then ThreadID.
type SummarizeRequest struct {
	EmailID  *string `json:"email_id"`
	ThreadID *string `json:"thread_id"`
	Text     *string `json:"text"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// ComposeRequest is the input of smart compose.
type ComposeRequest struct {
	Context *string `json:"context"`
	ReplyTo *string `json:"reply_to"`
	Prompt  *string `json:"prompt"`
}

type ComposeResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SearchRequest is the body of POST /api/ai/search
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	EmailID string  `json:"email_id"`
	Subject string  `json:"subject"`
	Snippet string  `json:"snippet"`
	Score   float32 `json:"score"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Mode    string         `json:"mode"`
}

type CategorizeRequest struct {
	EmailID string `json:"email_id"`
}

type CategorizeResponse struct {
	SuggestedLabels []string `json:"suggested_labels"`
	Priority        string   `json:"priority"`
}

type IndexResponse struct {
	IndexedCount int `json:"indexed_count"`
}
