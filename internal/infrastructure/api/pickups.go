package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PickupHandler serves locations, time slots, blackout dates, and the
// pickup schedule lifecycle.
type PickupHandler struct {
	pickups *application.PickupService
	logger  zerolog.Logger
}

// NewPickupHandler creates a new pickup handler.
func NewPickupHandler(pickups *application.PickupService, logger zerolog.Logger) *PickupHandler {
	return &PickupHandler{pickups: pickups, logger: logger}
}

// Routes mounts the pickup admin endpoints.
func (h *PickupHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", h.listLocations)
		r.Post("/", h.createLocation)
		r.Route("/{locationID}", func(r chi.Router) {
			r.Put("/", h.updateLocation)
			r.Delete("/", h.deleteLocation)
			r.Get("/slots", h.listSlots)
			r.Post("/slots", h.createSlot)
		})
	})
	r.Route("/slots/{slotID}", func(r chi.Router) {
		r.Put("/", h.updateSlot)
		r.Delete("/", h.deleteSlot)
	})
	r.Route("/blackouts", func(r chi.Router) {
		r.Get("/", h.listBlackouts)
		r.Post("/", h.createBlackout)
		r.Delete("/{blackoutID}", h.deleteBlackout)
	})
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", h.dayView)
		r.Post("/", h.createSchedule)
		r.Route("/{scheduleID}", func(r chi.Router) {
			r.Get("/", h.getSchedule)
			r.Put("/status", h.updateStatus)
			r.Put("/reschedule", h.reschedule)
		})
	})

	return r
}

type locationRequest struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address"`
	CalendarID string `json:"calendar_id"`
	Active     *bool  `json:"active"`
}

func (h *PickupHandler) listLocations(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	locations, err := h.pickups.ListLocations(r.Context(), shopFrom(r), activeOnly)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": locations})
}

func (h *PickupHandler) createLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loc := &domain.PickupLocation{
		ShopDomain: shopFrom(r),
		Name:       req.Name,
		Address:    req.Address,
		CalendarID: req.CalendarID,
		Active:     true,
	}
	if req.Active != nil {
		loc.Active = *req.Active
	}
	if err := h.pickups.CreateLocation(r.Context(), loc); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

func (h *PickupHandler) updateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "locationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req locationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loc := &domain.PickupLocation{
		ID:         id,
		ShopDomain: shopFrom(r),
		Name:       req.Name,
		Address:    req.Address,
		CalendarID: req.CalendarID,
		Active:     true,
	}
	if req.Active != nil {
		loc.Active = *req.Active
	}
	if err := h.pickups.UpdateLocation(r.Context(), loc); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *PickupHandler) deleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "locationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.pickups.DeleteLocation(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type slotRequest struct {
	Weekday    int    `json:"weekday" validate:"min=0,max=6"`
	StartLabel string `json:"start_label" validate:"required"`
	EndLabel   string `json:"end_label" validate:"required"`
	Capacity   int    `json:"capacity" validate:"min=0"`
	Active     *bool  `json:"active"`
}

func (h *PickupHandler) listSlots(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "locationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slots, err := h.pickups.ListSlots(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

func (h *PickupHandler) createSlot(w http.ResponseWriter, r *http.Request) {
	locationID, err := pathUUID(chi.URLParam(r, "locationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req slotRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot := &domain.TimeSlot{
		LocationID: locationID,
		Weekday:    time.Weekday(req.Weekday),
		StartLabel: req.StartLabel,
		EndLabel:   req.EndLabel,
		Capacity:   req.Capacity,
		Active:     true,
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}
	if err := h.pickups.CreateSlot(r.Context(), slot); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *PickupHandler) updateSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req slotRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot := &domain.TimeSlot{
		ID:         id,
		Weekday:    time.Weekday(req.Weekday),
		StartLabel: req.StartLabel,
		EndLabel:   req.EndLabel,
		Capacity:   req.Capacity,
		Active:     true,
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}
	if err := h.pickups.UpdateSlot(r.Context(), slot); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *PickupHandler) deleteSlot(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.pickups.DeleteSlot(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type blackoutRequest struct {
	Date       string `json:"date" validate:"required"`
	LocationID string `json:"location_id"`
	Reason     string `json:"reason"`
}

func (h *PickupHandler) listBlackouts(w http.ResponseWriter, r *http.Request) {
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(1, 0, 0)
	blackouts, err := h.pickups.ListBlackouts(r.Context(), shopFrom(r), from, to)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blackouts": blackouts})
}

func (h *PickupHandler) createBlackout(w http.ResponseWriter, r *http.Request) {
	var req blackoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	b := &domain.BlackoutDate{
		ShopDomain: shopFrom(r),
		Date:       date,
		Reason:     req.Reason,
	}
	if req.LocationID != "" {
		locID, err := pathUUID(req.LocationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		b.LocationID = &locID
	}
	if err := h.pickups.CreateBlackout(r.Context(), b); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *PickupHandler) deleteBlackout(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "blackoutID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.pickups.DeleteBlackout(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Availability serves the storefront widget; unlike the admin routes it
// takes the shop as a query parameter because the widget has no session.
func (h *PickupHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop parameter is required")
		return
	}

	var locationID *uuid.UUID
	if raw := q.Get("location_id"); raw != "" {
		id, err := pathUUID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		locationID = &id
	}
	var from time.Time
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	days, _ := strconv.Atoi(q.Get("days"))

	availability, err := h.pickups.Availability(r.Context(), shop, locationID, from, days)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Availability lookup failed")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"days": availability})
}

func (h *PickupHandler) dayView(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		raw = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	view, err := h.pickups.DayView(r.Context(), shopFrom(r), date)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pickups": view})
}

type createScheduleRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	LocationID string `json:"location_id"`
	Date       string `json:"date" validate:"required"`
	SlotLabel  string `json:"slot_label"`
	OrderName  string `json:"order_name"`
}

func (h *PickupHandler) createSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customerID, err := pathUUID(req.CustomerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	schedule := &domain.PickupSchedule{
		ShopDomain: shopFrom(r),
		CustomerID: customerID,
		PickupDate: date,
		SlotLabel:  req.SlotLabel,
		OrderName:  req.OrderName,
	}
	if req.LocationID != "" {
		locID, err := pathUUID(req.LocationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		schedule.LocationID = &locID
	}
	if err := h.pickups.CreateSchedule(r.Context(), schedule); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

func (h *PickupHandler) getSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, err := h.pickups.GetSchedule(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=picked_up missed canceled"`
}

func (h *PickupHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, err := h.pickups.UpdateStatus(r.Context(), id, domain.PickupStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			serviceError(w, err)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

type rescheduleRequest struct {
	Date       string `json:"date" validate:"required"`
	SlotLabel  string `json:"slot_label"`
	LocationID string `json:"location_id"`
}

func (h *PickupHandler) reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req rescheduleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	var locationID *uuid.UUID
	if req.LocationID != "" {
		locID, err := pathUUID(req.LocationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		locationID = &locID
	}
	schedule, err := h.pickups.Reschedule(r.Context(), id, date, req.SlotLabel, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			serviceError(w, err)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}
