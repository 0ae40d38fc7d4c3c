// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/todoapi/internal/platform/constants"
	requestutil "github.com/taibuivan/todoapi/internal/platform/request"
	"github.com/taibuivan/todoapi/internal/platform/respond"
	"github.com/taibuivan/todoapi/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /users HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the /users prefix.
//
// authenticate is the session gate applied to the protected endpoints.
//
// # Endpoints
//   - POST   /          : Registers an account and returns a session token.
//   - POST   /login     : Checks credentials and returns a session token.
//   - GET    /me        : Returns the caller's public view.
//   - DELETE /me/token  : Revokes the token the request was made with.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/", handler.register)
	router.Post("/login", handler.login)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", handler.me)
		r.Delete("/me/token", handler.logout)
	})

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register creates an account and signs the caller in.

POST /users

Response:
  - 200: PublicView, header x-auth carries the new token
  - 400: Validation failure or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.service.Register(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.signIn(writer, request, user)
}

/*
Login authenticates by email and password.

POST /users/login

Response:
  - 200: PublicView, header x-auth carries the new token
  - 400: Invalid credentials
  - 429: Too many failed attempts for this email
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.service.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.signIn(writer, request, user)
}

// signIn issues a token, exposes it in the x-auth header and writes the public view.
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request, user *User) {
	token, err := handler.service.IssueSessionToken(request.Context(), user)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderAuthToken, token)
	respond.OK(writer, ToPublicView(user))
}

/*
Me returns the authenticated caller.

GET /users/me

Response:
  - 200: PublicView
  - 401: Missing or invalid session token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, PublicView{ID: identity.UserID, Email: identity.Email})
}

/*
Logout revokes the session token used for this request.

DELETE /users/me/token

Response:
  - 200: Empty body
  - 400: Storage failure
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeSessionToken(request.Context(), identity.UserID, identity.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Empty(writer, http.StatusOK)
}
