package emails

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/logger"
	"github.com/Kantosaurus/test-01/pkg/mathutil"
	"github.com/Kantosaurus/test-01/pkg/metrics"
	"github.com/Kantosaurus/test-01/pkg/textutil"
)

// Pagination bounds for List.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
	SnippetLength   = 100
)

// Service handles business logic for emails
type Service struct {
	repo  *Repository
	owner Contact
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a new emails service
func NewService(repo *Repository, cfg *config.Config, log *slog.Logger) *Service {
	owner := Contact{Email: cfg.Mailbox.OwnerAddress}
	if name := cfg.Mailbox.OwnerName; name != "" {
		owner.Name = &name
	}
	return &Service{
		repo:  repo,
		owner: owner,
		log:   log.With(logger.Scope("emails.svc")),
		now:   time.Now,
	}
}

// List returns one page of emails plus the total matching the filter.
func (s *Service) List(ctx context.Context, p ListParams) (*ListResponse, error) {
	page, limit := normalizePage(p.Page, p.Limit)
	skip := (page - 1) * limit

	items, err := s.repo.List(ctx, p.Filter, skip, limit)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	total, err := s.repo.Count(ctx, p.Filter)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}

	return &ListResponse{Emails: items, Total: total, Page: page, Limit: limit}, nil
}

// normalizePage applies the paging defaults. page is capped so that the
// computed skip never overflows.
func normalizePage(page, limit int) (int, int) {
	limit = mathutil.ClampLimit(limit, DefaultPageSize, MaxPageSize)
	return mathutil.ClampInt(page, 1, math.MaxInt/limit), limit
}

// Get returns the full email including CC.
func (s *Service) Get(ctx context.Context, id string) (*Email, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id)
	}
	return e, nil
}

// Create stores a new outgoing email sent by the mailbox owner.
func (s *Service) Create(ctx context.Context, req *CreateEmailRequest) (*Email, error) {
	threadID, err := s.threadFor(ctx, req.ReplyTo)
	if err != nil {
		return nil, err
	}

	body := textutil.EnsureUTF8(req.Body)
	n := NewEmail{
		ID:         uuid.New().String(),
		Subject:    textutil.EnsureUTF8(req.Subject),
		Body:       body,
		Snippet:    textutil.Truncate(body, SnippetLength),
		Date:       s.now().UTC(),
		ThreadID:   threadID,
		Owner:      s.owner,
		Recipients: normalizeAddresses(req.To),
		CC:         normalizeAddresses(req.CC),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	metrics.EmailsCreated.Inc()

	s.log.Info("email created",
		slog.String("email_id", n.ID),
		slog.String("thread_id", threadID),
	)
	return s.Get(ctx, n.ID)
}

// threadFor decides the thread of a new email. A reply joins the thread of
// the email it answers; everything else starts a new thread.
func (s *Service) threadFor(ctx context.Context, replyTo *string) (string, error) {
	if replyTo == nil || strings.TrimSpace(*replyTo) == "" {
		return uuid.New().String(), nil
	}
	id := strings.TrimSpace(*replyTo)
	threadID, err := s.repo.ThreadOf(ctx, id)
	if err != nil {
		return "", s.mapError(err, id)
	}
	if threadID == "" {
		return uuid.New().String(), nil
	}
	return threadID, nil
}

// Update applies a partial update and returns the re-read email.
func (s *Service) Update(ctx context.Context, id string, req *UpdateEmailRequest) (*Email, error) {
	changes := Changes{IsRead: req.IsRead, IsStarred: req.IsStarred}
	if req.Labels != nil {
		for _, l := range req.Labels {
			if strings.TrimSpace(l) == "" {
				return nil, apperror.NewBadRequest("label names must not be blank")
			}
		}
		changes.Labels = dedupe(req.Labels)
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, s.mapError(err, id)
	}
	return s.Get(ctx, id)
}

// Delete removes the email. It is idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

func (s *Service) mapError(err error, id string) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NewNotFound("email", id)
	}
	return apperror.NewDatabase(err)
}

// normalizeAddresses trims addresses and drops empty and duplicate entries,
// keeping the first occurrence.
func normalizeAddresses(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// dedupe collapses repeated label names. The result is non-nil so that an
// empty input still clears the label set.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
