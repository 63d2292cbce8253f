package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
)

type reservationService interface {
	Book(ctx context.Context, roomID, requester string, start, end time.Time) (application.Reservation, error)
	GetReservation(ctx context.Context, id string) (application.Reservation, error)
	ListReservations(ctx context.Context) ([]application.Reservation, error)
	ListReservationsForRoom(ctx context.Context, roomID string) ([]application.Reservation, error)
	ListReservationsBetween(ctx context.Context, roomID string, start, end time.Time) ([]application.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

type roomLookup interface {
	GetRoom(ctx context.Context, id string) (application.Room, error)
}

type ReservationHandler struct {
	service   reservationService
	rooms     roomLookup
	responder responder
	logger    *slog.Logger
}

// NewReservationHandler builds the booking endpoints. rooms resolves the room
// of /rooms/{id}/reservations so that unknown rooms answer 404.
func NewReservationHandler(service reservationService, rooms roomLookup, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, rooms: rooms, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// Create books a room. The response carries the admitted reservation.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}

	start, end, fieldErrors := req.interval()
	if len(fieldErrors) > 0 {
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
			ErrorCode: "BAD_REQUEST",
			Message:   statusMessage(http.StatusBadRequest),
			Errors:    fieldErrors,
		})
		return
	}

	reservation, err := h.service.Book(r.Context(), req.RoomID, req.Requester, start, end)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Location", "/reservations/"+reservation.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errInvalidReservationID)
		return
	}

	reservation, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

// List returns every reservation. A room_id query parameter narrows the
// result to that room.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if roomID := strings.TrimSpace(r.URL.Query().Get("room_id")); roomID != "" {
		h.listForRoom(w, r, roomID)
		return
	}

	reservations, err := h.service.ListReservations(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

// ListForRoom serves /rooms/{id}/reservations.
func (h *ReservationHandler) ListForRoom(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errInvalidRoomID)
		return
	}
	h.listForRoom(w, r, roomID)
}

func (h *ReservationHandler) listForRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if h.rooms != nil {
		if _, err := h.rooms.GetRoom(r.Context(), roomID); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	query := r.URL.Query()
	rawStart, rawEnd := strings.TrimSpace(query.Get("start")), strings.TrimSpace(query.Get("end"))

	var (
		reservations []application.Reservation
		err          error
	)
	if rawStart == "" && rawEnd == "" {
		reservations, err = h.service.ListReservationsForRoom(r.Context(), roomID)
	} else {
		start, end, fieldErrors := parseInterval(rawStart, rawEnd)
		if len(fieldErrors) > 0 {
			h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
				ErrorCode: "BAD_REQUEST",
				Message:   statusMessage(http.StatusBadRequest),
				Errors:    fieldErrors,
			})
			return
		}
		reservations, err = h.service.ListReservationsBetween(r.Context(), roomID, start, end)
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errInvalidReservationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteReservation(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete", "principal", principal.Subject, "reservation_id", id).InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type reservationRequest struct {
	RoomID    string `json:"room_id"`
	Requester string `json:"requester"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func (r reservationRequest) interval() (time.Time, time.Time, map[string]string) {
	return parseInterval(strings.TrimSpace(r.Start), strings.TrimSpace(r.End))
}

func parseInterval(rawStart, rawEnd string) (time.Time, time.Time, map[string]string) {
	errs := make(map[string]string)
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		errs["start"] = "must be an RFC 3339 timestamp"
	}
	end, err := time.Parse(time.RFC3339, rawEnd)
	if err != nil {
		errs["end"] = "must be an RFC 3339 timestamp"
	}
	return start, end, errs
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Requester string `json:"requester"`
	Start     string `json:"start"`
	End       string `json:"end"`
	CreatedAt string `json:"created_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		Requester: reservation.Requester,
		Start:     formatTimestamp(reservation.Start),
		End:       formatTimestamp(reservation.End),
		CreatedAt: formatTimestamp(reservation.CreatedAt),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
