package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/apperrors"
)

// RegisterRoutes wires audit routes to the router.
func RegisterRoutes(router chi.Router, service *Service) {
	router.Method(http.MethodGet, "/v1/audit/events", api.Handler(queryEvents(service)))
	router.Method(http.MethodGet, "/v1/audit/events/{event_id}", api.Handler(getEvent(service)))
}

func queryEvents(service *Service) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		filters := EventQueryFilters{}
		query := r.URL.Query()

		if v := query.Get("type"); v != "" {
			filters.Type = &v
		}
		if v := query.Get("level"); v != "" {
			level := EventLevel(v)
			filters.Level = &level
		}
		if v := query.Get("room"); v != "" {
			filters.Room = &v
		}
		if v := query.Get("dsn"); v != "" {
			filters.DSN = &v
		}
		if v := query.Get("start_date"); v != "" {
			filters.StartDate = &v
		}
		if v := query.Get("end_date"); v != "" {
			filters.EndDate = &v
		}
		if v := query.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				return apperrors.NewValidationError("limit must be a non-negative integer", nil)
			}
			filters.Limit = limit
		}
		if v := query.Get("offset"); v != "" {
			offset, err := strconv.Atoi(v)
			if err != nil || offset < 0 {
				return apperrors.NewValidationError("offset must be a non-negative integer", nil)
			}
			filters.Offset = offset
		}

		events, _, hasMore, err := service.QueryEvents(filters)
		if err != nil {
			return apperrors.NewInternalError("Failed to query audit events")
		}

		return api.WriteList(w, "/v1/audit/events", events, hasMore)
	}
}

func getEvent(service *Service) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		eventID := chi.URLParam(r, "event_id")
		event, err := service.GetEvent(eventID)
		if err != nil {
			return apperrors.NewInternalError("Failed to load audit event")
		}
		if event == nil {
			return apperrors.NewNotFoundError("audit event not found: "+eventID, apperrors.ErrorCodeEventNotFound)
		}
		return api.WriteJSON(w, http.StatusOK, event)
	}
}
