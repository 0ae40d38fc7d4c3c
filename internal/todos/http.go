// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/todoapi/internal/platform/constants"
	requestutil "github.com/taibuivan/todoapi/internal/platform/request"
	"github.com/taibuivan/todoapi/internal/platform/respond"
	"github.com/taibuivan/todoapi/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /todos HTTP endpoints. Every route expects the
// session gate to have run.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the /todos prefix.
//
// # Endpoints
//   - POST   /      : Creates a todo.
//   - GET    /      : Lists the caller's todos.
//   - GET    /{id}  : Returns one todo.
//   - PATCH  /{id}  : Updates text and completion.
//   - DELETE /{id}  : Deletes one todo.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Text string `json:"text"`
}

// updateRequest keeps Completed untyped: only a JSON true marks the todo done,
// any other value (including "true" as a string) resets it.
type updateRequest struct {
	Text      *string `json:"text"`
	Completed any     `json:"completed"`
}

/*
Create adds a todo for the caller.

POST /todos

Response:
  - 200: The created Todo
  - 400: Empty text
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	todo, err := handler.service.Create(request.Context(), identity.UserID, input.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, todo)
}

// list handles GET /todos and responds with {"todos": [...]}.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.ListFor(request.Context(), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{constants.FieldTodos: items})
}

// get handles GET /todos/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	todo, err := handler.service.GetOwned(request.Context(), requestutil.Param(request, "id"), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{constants.FieldTodo: todo})
}

/*
Update edits a todo.

PATCH /todos/{id}

Response:
  - 200: {"todo": Todo} with the completedAt rule applied
  - 400: Empty text
  - 404: Absent, foreign or malformed ID
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeOptionalJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	completed, _ := input.Completed.(bool)

	todo, err := handler.service.UpdateOwned(request.Context(), requestutil.Param(request, "id"), identity.UserID, UpdateInput{
		Text:      input.Text,
		Completed: &completed,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{constants.FieldTodo: todo})
}

// delete handles DELETE /todos/{id} and responds with the removed todo.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	todo, err := handler.service.DeleteOwned(request.Context(), requestutil.Param(request, "id"), identity.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{constants.FieldTodo: todo})
}
