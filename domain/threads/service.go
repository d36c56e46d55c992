package threads

import (
	"context"

	"github.com/Kantosaurus/test-01/pkg/apperror"
)

// Service reconstructs thread views.
type Service struct {
	repo *Repository
}

// NewService creates a new threads service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the thread or a not-found error when no email carries id.
func (s *Service) Get(ctx context.Context, id string) (*Thread, error) {
	items, err := s.repo.Emails(ctx, id)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	thread := BuildThread(id, items)
	if thread == nil {
		return nil, apperror.NewNotFound("thread", id)
	}
	return thread, nil
}
