package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservations/internal/application"
)

const maxRequestBody = 1 << 20

var (
	errBadRequestBody       = errors.New("request body is not valid JSON")
	errInvalidRoomID        = errors.New("room id is required")
	errInvalidEquipmentID   = errors.New("equipment id is required")
	errInvalidReservationID = errors.New("reservation id is required")
	errMissingAdminToken    = errors.New("an administrator token is required")
	errInvalidAdminToken    = errors.New("the administrator token is not valid")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
	}
	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
}

// handleServiceError translates service errors into responses. The message of
// an admission error is written verbatim; wrapped storage details stay in the logs.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, "INTERNAL", nil)
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrRoomNotFound):
		r.writeError(ctx, w, http.StatusNotFound, "ROOM_NOT_FOUND", application.ErrRoomNotFound)
	case errors.Is(err, application.ErrNotFound):
		r.writeError(ctx, w, http.StatusNotFound, "NOT_FOUND", nil)
	case errors.Is(err, application.ErrInvalidInterval):
		r.writeError(ctx, w, http.StatusUnprocessableEntity, "INVALID_INTERVAL", application.ErrInvalidInterval)
	case errors.Is(err, application.ErrInvalidRequester):
		r.writeError(ctx, w, http.StatusUnprocessableEntity, "INVALID_REQUESTER", application.ErrInvalidRequester)
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   statusMessage(http.StatusUnprocessableEntity),
			Errors:    vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrTimeConflict):
		r.writeError(ctx, w, http.StatusConflict, "TIME_CONFLICT", application.ErrTimeConflict)
	case errors.Is(err, application.ErrRoomInUse):
		r.writeError(ctx, w, http.StatusConflict, "ROOM_IN_USE", application.ErrRoomInUse)
	case errors.Is(err, application.ErrEquipmentInUse):
		r.writeError(ctx, w, http.StatusConflict, "EQUIPMENT_IN_USE", application.ErrEquipmentInUse)
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeError(ctx, w, http.StatusConflict, "ALREADY_EXISTS", errors.New("a resource with this id already exists"))
	case errors.Is(err, application.ErrStorageFailure):
		w.Header().Set("Retry-After", "1")
		r.writeError(ctx, w, http.StatusServiceUnavailable, "STORAGE_FAILURE", application.ErrStorageFailure)
	case errors.Is(err, application.ErrUnauthorized):
		r.writeError(ctx, w, http.StatusForbidden, "AUTH_FORBIDDEN", nil)
	case errors.Is(err, context.DeadlineExceeded):
		r.writeError(ctx, w, http.StatusGatewayTimeout, "TIMEOUT", nil)
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeError(ctx, w, http.StatusInternalServerError, "INTERNAL", nil)
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is malformed"
	case http.StatusUnauthorized:
		return "authentication is required"
	case http.StatusForbidden:
		return "you are not allowed to perform this operation"
	case http.StatusNotFound:
		return "the requested resource does not exist"
	case http.StatusConflict:
		return "the request conflicts with the current state of the resource"
	case http.StatusUnprocessableEntity:
		return "the request contains invalid fields"
	case http.StatusServiceUnavailable:
		return "the service is temporarily unavailable"
	case http.StatusGatewayTimeout:
		return "the request timed out"
	default:
		return "an internal error occurred"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}
