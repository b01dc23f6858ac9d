package task

import (
	"context"
	"errors"
	"strings"

	"tasks-api/internal/domain"
	taskrepo "tasks-api/internal/repository/task"
)

var (
	// ErrMissingFields is returned when a new task lacks its owner, title or description.
	ErrMissingFields = errors.New("user_id, title and description are required")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid task status")
)

type Service struct {
	repo taskrepo.Repository
}

func New(repo taskrepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	UserID      int64
	Title       string
	Description string
	Status      domain.TaskStatus
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if in.UserID <= 0 || title == "" || description == "" {
		return nil, ErrMissingFields
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.Create(ctx, domain.Task{
		UserID:      in.UserID,
		Title:       title,
		Description: description,
		Status:      status,
	})
}

// List returns tasks of userID, or all tasks when userID is nil, with the total count.
func (s *Service) List(ctx context.Context, userID *int64) ([]domain.Task, int, error) {
	return s.repo.List(ctx, taskrepo.ListFilter{UserID: userID})
}

// Update applies the non-empty fields of patch. Empty strings leave the field
// unchanged; a patch that changes nothing returns the stored task as is.
func (s *Service) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		patch.Title = nil
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		patch.Description = nil
	}
	if patch.Status != nil {
		if *patch.Status == "" {
			patch.Status = nil
		} else if !patch.Status.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	if patch.Empty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
