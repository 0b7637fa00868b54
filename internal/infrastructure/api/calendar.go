package api

import (
	"net/http"

	"pickupstand/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CalendarHandler serves the Google Calendar connection settings.
type CalendarHandler struct {
	calendar *application.CalendarService
	logger   zerolog.Logger
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(calendar *application.CalendarService, logger zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: logger}
}

// Routes mounts the calendar settings endpoints.
func (h *CalendarHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.status)
	r.Get("/calendars", h.listCalendars)
	r.Put("/calendar", h.selectCalendar)
	r.Delete("/", h.disconnect)
	return r
}

func (h *CalendarHandler) status(w http.ResponseWriter, r *http.Request) {
	connected, calendarID, err := h.calendar.Status(r.Context(), shopFrom(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected":   connected,
		"calendar_id": calendarID,
	})
}

func (h *CalendarHandler) listCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.calendar.ListCalendars(r.Context(), shopFrom(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list calendars")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"calendars": calendars})
}

type selectCalendarRequest struct {
	CalendarID string `json:"calendar_id" validate:"required"`
}

func (h *CalendarHandler) selectCalendar(w http.ResponseWriter, r *http.Request) {
	var req selectCalendarRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.calendar.SelectCalendar(r.Context(), shopFrom(r), req.CalendarID); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CalendarHandler) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.calendar.Disconnect(r.Context(), shopFrom(r)); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
