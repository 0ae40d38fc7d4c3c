// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/validate"
	"github.com/taibuivan/todoapi/pkg/pointer"
	"github.com/taibuivan/todoapi/pkg/uuid"
)

// resourceName labels todo errors.
const resourceName = "Todo"

// Service implements owner-scoped todo use cases.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: time.Now}
}

// NewServiceWithClock is [NewService] with an injectable clock for completedAt.
func NewServiceWithClock(repository Repository, now func() time.Time) *Service {
	return &Service{repository: repository, now: now}
}

// UpdateInput holds the optional fields of a PATCH.
type UpdateInput struct {
	Text      *string
	Completed *bool
}

/*
Create adds a todo to ownerID's list.

Parameters:
  - context: context.Context
  - ownerID: string
  - text: string (trimmed before storing)

Returns:
  - *Todo: Created entity
  - error: ValidationError on empty text, or a 400 on storage failure
*/
func (service *Service) Create(context context.Context, ownerID, text string) (*Todo, error) {
	text = strings.TrimSpace(text)

	validator := &validate.Validator{}
	validator.Required(FieldText, text)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	todo := &Todo{
		ID:      uuid.New(),
		Text:    text,
		Creator: ownerID,
	}

	if err := service.repository.Create(context, todo); err != nil {
		return nil, apperr.OnWrite(fmt.Errorf("todos_service_create_failed: %w", err))
	}
	return todo, nil
}

// ListFor returns ownerID's todos, oldest first.
func (service *Service) ListFor(context context.Context, ownerID string) ([]*Todo, error) {
	items, err := service.repository.ListByCreator(context, ownerID)
	if err != nil {
		return nil, fmt.Errorf("todos_service_list_failed: %w", err)
	}
	return items, nil
}

// GetOwned returns one todo. Absent, foreign and malformed IDs all yield the same NotFound.
func (service *Service) GetOwned(context context.Context, id, ownerID string) (*Todo, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceName)
	}

	todo, err := service.repository.FindOwned(context, id, ownerID)
	if err != nil {
		return nil, classify(err, "todos_service_get_failed", false)
	}
	return todo, nil
}

/*
UpdateOwned edits one todo.

Description: If Completed is explicitly true, completedAt is set to now in
milliseconds. In every other case, including when Completed is omitted, the
todo is reset to not completed with a null completedAt.

Parameters:
  - context: context.Context
  - id: string
  - ownerID: string
  - input: UpdateInput

Returns:
  - *Todo: The updated entity
  - error: NotFound, ValidationError on empty text, or a 400 on storage failure
*/
func (service *Service) UpdateOwned(context context.Context, id, ownerID string, input UpdateInput) (*Todo, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceName)
	}

	patch := Patch{}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)

		validator := &validate.Validator{}
		validator.Required(FieldText, text)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		patch.Text = &text
	}

	if pointer.IsTrue(input.Completed) {
		patch.Completed = true
		patch.CompletedAt = pointer.To(service.now().UnixMilli())
	}

	todo, err := service.repository.UpdateOwned(context, id, ownerID, patch)
	if err != nil {
		return nil, classify(err, "todos_service_update_failed", true)
	}
	return todo, nil
}

// DeleteOwned removes one todo and returns it.
func (service *Service) DeleteOwned(context context.Context, id, ownerID string) (*Todo, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceName)
	}

	todo, err := service.repository.DeleteOwned(context, id, ownerID)
	if err != nil {
		return nil, classify(err, "todos_service_delete_failed", true)
	}
	return todo, nil
}

// classify maps a not-found to the shared 404 and wraps anything else.
// Write paths turn unclassified failures into a 400.
func classify(err error, tag string, write bool) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound(resourceName)
	}

	wrapped := fmt.Errorf("%s: %w", tag, err)
	if write {
		return apperr.OnWrite(wrapped)
	}
	return wrapped
}
