package handlers

import (
	"errors"
	"net/http"

	analyticsvc "github.com/ivankudzin/sensgen/internal/services/analytics"
	authsvc "github.com/ivankudzin/sensgen/internal/services/auth"
	"github.com/ivankudzin/sensgen/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/sensgen/internal/transport/http/errors"
)

// EventsHandler accepts client-side telemetry for the calling session.
type EventsHandler struct {
	service *analyticsvc.Service
}

func NewEventsHandler(service *analyticsvc.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENTS_SERVICE_UNAVAILABLE", "events service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.EventsBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	input := make([]analyticsvc.BatchEvent, 0, len(req))
	for _, item := range req {
		input = append(input, analyticsvc.BatchEvent{
			Name:  item.Name,
			TS:    item.TS,
			Props: item.Props,
		})
	}

	if err := h.service.IngestBatch(r.Context(), identity.SID, input); err != nil {
		switch {
		case errors.Is(err, analyticsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid events batch: max 100 events, each with non-empty name")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to ingest events")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.EventsBatchResponse{
		OK:       true,
		Accepted: len(input),
	})
}
