package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/metrics"
	"github.com/Kantosaurus/test-01/pkg/textutil"
)

// Priorities returned by Categorize.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	summaryFallbackLength = 200
	suggestionCount       = 3
	defaultComposeTopic   = "general business email"
	emptySummary          = "Unable to generate summary."
)

// Summarize produces a short summary of an email, a thread or free text.
func (s *Service) Summarize(ctx context.Context, req *SummarizeRequest) (string, error) {
	content, ok, err := s.summaryContent(ctx, req)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperror.NewBadRequest("no content to summarize")
	}

	if !s.llm.IsEnabled() {
		metrics.ProviderFallbacks.WithLabelValues("summarize").Inc()
		return SummaryFallback(content), nil
	}

	prompt, err := renderPrompt(promptSummarize, map[string]any{"content": content})
	if err != nil {
		return "", apperror.NewInternal("failed to build prompt", err)
	}
	out, err := s.llm.Complete(ctx, "summarize", prompt)
	if err != nil {
		return "", err
	}
	if out = strings.TrimSpace(out); out == "" {
		return emptySummary, nil
	}
	return out, nil
}

// summaryContent picks the content to summarize: caller text first, then
// the email, then the thread. ok is false when no source was given. Text that
// is present but empty still counts as a source.
func (s *Service) summaryContent(ctx context.Context, req *SummarizeRequest) (content string, ok bool, err error) {
	switch {
	case req.Text != nil:
		return *req.Text, true, nil

	case present(req.EmailID):
		email, err := s.emails.Get(ctx, *req.EmailID)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Subject: %s\n\n%s", email.Subject, email.Body), true, nil

	case present(req.ThreadID):
		thread, err := s.threads.Get(ctx, *req.ThreadID)
		if err != nil {
			return "", false, err
		}
		lines := make([]string, 0, len(thread.Emails))
		for _, e := range thread.Emails {
			lines = append(lines, fmt.Sprintf("From: %s\nSubject: %s\n%s\n---", e.From.Email, e.Subject, e.Body))
		}
		return strings.Join(lines, "\n"), true, nil
	}
	return "", false, nil
}

// SummaryFallback is the summary used without a completion provider.
func SummaryFallback(text string) string {
	return "Summary: " + textutil.Preview(text, summaryFallbackLength)
}

// SmartCompose suggests three replies.
func (s *Service) SmartCompose(ctx context.Context, req *ComposeRequest) ([]string, error) {
	var previous, topic string
	if req.Context != nil {
		previous = *req.Context
	}
	if req.Prompt != nil {
		topic = strings.TrimSpace(*req.Prompt)
	}
	if previous == "" && present(req.ReplyTo) {
		email, err := s.emails.Get(ctx, *req.ReplyTo)
		if err != nil {
			return nil, err
		}
		previous = email.Body
	}

	if !s.llm.IsEnabled() {
		metrics.ProviderFallbacks.WithLabelValues("compose").Inc()
		return ComposeFallback(topic), nil
	}

	if topic == "" {
		topic = defaultComposeTopic
	}
	prompt, err := renderPrompt(promptCompose, map[string]any{"topic": topic, "context": previous})
	if err != nil {
		return nil, apperror.NewInternal("failed to build prompt", err)
	}
	out, err := s.llm.Complete(ctx, "compose", prompt)
	if err != nil {
		return nil, err
	}
	return SplitSuggestions(out), nil
}

// ComposeFallback returns the canned suggestions, mentioning topic when set.
func ComposeFallback(topic string) []string {
	if topic == "" {
		return []string{
			"Thank you for your email. I'll get back to you as soon as possible.",
			"I appreciate you reaching out. Let me review this and follow up.",
			"Thanks for the message. I'll look into this and respond shortly.",
		}
	}
	return []string{
		fmt.Sprintf("Thank you for your message about %s. I'll review and get back to you shortly.", topic),
		fmt.Sprintf("I appreciate you reaching out regarding %s. Let me look into this.", topic),
		fmt.Sprintf("Thanks for the update on %s. I'll follow up with more details soon.", topic),
	}
}

// SplitSuggestions splits a completion on "---" into at most three trimmed,
// non-empty suggestions. Output without separators is one suggestion.
func SplitSuggestions(content string) []string {
	out := make([]string, 0, suggestionCount)
	for _, part := range strings.Split(content, "---") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == suggestionCount {
			break
		}
	}
	return out
}

// Categorize suggests labels and a priority for the email.
func (s *Service) Categorize(ctx context.Context, emailID string) (*CategorizeResponse, error) {
	if strings.TrimSpace(emailID) == "" {
		return nil, apperror.NewBadRequest("email_id is required")
	}
	email, err := s.emails.Get(ctx, emailID)
	if err != nil {
		return nil, err
	}

	if !s.llm.IsEnabled() {
		metrics.ProviderFallbacks.WithLabelValues("categorize").Inc()
		return CategorizeByKeywords(email.Subject, email.Body), nil
	}

	prompt, err := renderPrompt(promptCategorize, map[string]any{
		"subject": email.Subject,
		"body":    email.Body,
		"labels":  categoryChoices,
	})
	if err != nil {
		return nil, apperror.NewInternal("failed to build prompt", err)
	}
	out, err := s.llm.Complete(ctx, "categorize", prompt)
	if err != nil {
		return nil, err
	}
	return ParseCategorization(out), nil
}

// ParseCategorization reads the LABELS: and PRIORITY: lines of a completion.
// INBOX always comes first; an unknown priority becomes medium.
func ParseCategorization(content string) *CategorizeResponse {
	labels := []string{mailgraph.LabelInbox}
	seen := map[string]struct{}{mailgraph.LabelInbox: {}}
	priority := PriorityMedium

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "LABELS:"):
			for _, l := range strings.Split(strings.TrimPrefix(line, "LABELS:"), ",") {
				l = strings.TrimSpace(l)
				if l == "" {
					continue
				}
				if _, dup := seen[l]; dup {
					continue
				}
				seen[l] = struct{}{}
				labels = append(labels, l)
			}
		case strings.HasPrefix(line, "PRIORITY:"):
			priority = normalizePriority(strings.TrimPrefix(line, "PRIORITY:"))
		}
	}
	return &CategorizeResponse{SuggestedLabels: labels, Priority: priority}
}

func normalizePriority(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityMedium
	}
}

// CategorizeByKeywords is the rule-based categorization used without a
// completion provider. The first matching rule wins.
func CategorizeByKeywords(subject, body string) *CategorizeResponse {
	subject = strings.ToLower(subject)
	body = strings.ToLower(body)
	labels := []string{mailgraph.LabelInbox}

	switch {
	case containsAny(subject, "urgent", "asap", "important"):
		return &CategorizeResponse{SuggestedLabels: append(labels, mailgraph.LabelImportant), Priority: PriorityHigh}
	case containsAny(subject, "newsletter") || strings.Contains(body, "unsubscribe"):
		return &CategorizeResponse{SuggestedLabels: append(labels, "Newsletters"), Priority: PriorityLow}
	case containsAny(subject, "meeting", "calendar", "invite"):
		return &CategorizeResponse{SuggestedLabels: append(labels, "Work"), Priority: PriorityMedium}
	case containsAny(subject, "order", "shipping", "delivery"):
		return &CategorizeResponse{SuggestedLabels: append(labels, "Shopping"), Priority: PriorityLow}
	default:
		return &CategorizeResponse{SuggestedLabels: labels, Priority: PriorityMedium}
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
