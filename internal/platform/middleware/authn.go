// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/constants"
	"github.com/taibuivan/todoapi/internal/platform/ctxutil"
	"github.com/taibuivan/todoapi/internal/platform/respond"
	"github.com/taibuivan/todoapi/internal/platform/sec"
)

// SessionResolver resolves a raw session token to the identity that owns it.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the users
// service, allowing a stub to be injected during unit testing.
type SessionResolver interface {
	ResolveSession(context context.Context, token string) (*sec.Identity, error)
}

// Authenticate gates a route on a valid, unrevoked session token.
//
// # Flow
//  1. Read the token from the x-auth header; absent → 401.
//  2. Resolve it through [SessionResolver]; any failure → 401. The response
//     never says whether the token was malformed, expired or revoked.
//  3. Inject [*sec.Identity] (user + raw token) into the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := request.Header.Get(constants.HeaderAuthToken)

			// ── 1. Token Presence ─────────────────────────────────────────────
			if token == "" {
				respond.Error(writer, request, apperr.ErrUnauthenticated)
				return
			}

			// ── 2. Session Resolution ─────────────────────────────────────────
			identity, err := resolver.ResolveSession(request.Context(), token)
			if err != nil {
				if apperr.As(err) == nil {
					// Storage failures are still a 401 to the caller, but worth a line.
					ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_resolution_failed",
						slog.Any("error", err),
					)
				}
				respond.Error(writer, request, apperr.ErrUnauthenticated)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			trackIdentity(request.Context(), identity.UserID)
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
