package labels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/mailgraph"
	"github.com/Kantosaurus/test-01/pkg/apperror"
	"github.com/Kantosaurus/test-01/pkg/logger"
)

// Service handles business logic for labels
type Service struct {
	repo *Repository
	log  *slog.Logger
}

// NewService creates a new labels service
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log.With(logger.Scope("labels.svc"))}
}

// List returns all labels with their email counts.
func (s *Service) List(ctx context.Context) ([]Label, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return out, nil
}

// Create adds a user label. Uniqueness is enforced by the store.
func (s *Service) Create(ctx context.Context, req *CreateLabelRequest) (*Label, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewBadRequest("label name is required")
	}
	color := mailgraph.DefaultLabelColor
	if req.Color != nil && strings.TrimSpace(*req.Color) != "" {
		color = strings.TrimSpace(*req.Color)
	}

	l, err := s.repo.Create(ctx, name, color)
	if err != nil {
		if errors.Is(err, graphdb.ErrConstraintViolation) {
			return nil, apperror.NewConflict(fmt.Sprintf("label '%s' already exists", name))
		}
		return nil, apperror.NewDatabase(err)
	}

	s.log.Info("label created", slog.String("name", name))
	return l, nil
}

// Delete removes a user label. System labels are refused.
func (s *Service) Delete(ctx context.Context, name string) error {
	if mailgraph.IsSystemLabel(name) {
		return apperror.NewForbidden(fmt.Sprintf("cannot delete system label '%s'", name))
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}
