// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Success bodies are written as-is (no data envelope): clients of this API
// read `todos`, `todo`, `id` and `email` at the top level. Error bodies share a
// single envelope, except 401 and 404 which are sent without a body so that
// "missing", "not yours" and "malformed" stay indistinguishable.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/todoapi/internal/platform/apperr"
	"github.com/taibuivan/todoapi/internal/platform/ctxutil"
)

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data as the whole body.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, data)
}

// Empty writes a status line with no body.
func Empty(writer http.ResponseWriter, statusCode int) {
	writer.WriteHeader(statusCode)
}

// Error converts any Go error into a standardized API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	// Unclassified write failures are client-visible as 400, but the cause is still worth a line.
	if appError.Code == apperr.CodeBadRequest && appError.Cause != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "write_failed",
			slog.Any("cause", appError.Cause),
		)
	}

	switch appError.HTTPStatus {
	case http.StatusUnauthorized, http.StatusNotFound:
		Empty(writer, appError.HTTPStatus)
		return
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
