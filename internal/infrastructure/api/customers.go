package api

import (
	"net/http"
	"strconv"

	"pickupstand/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CustomerHandler serves the CRM surface: customer search and detail,
// notes, and the SMS conversation.
type CustomerHandler struct {
	crm    *application.CRMService
	sms    *application.SmsService
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(crm *application.CRMService, sms *application.SmsService, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{crm: crm, sms: sms, logger: logger}
}

// Routes mounts the CRM endpoints.
func (h *CustomerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.search)
	r.Post("/sync", h.sync)
	r.Route("/{customerID}", func(r chi.Router) {
		r.Get("/", h.detail)
		r.Post("/notes", h.addNote)
		r.Get("/sms", h.conversation)
		r.Post("/sms", h.sendSms)
	})
	return r
}

// NoteRoutes mounts the note endpoints addressed by note id.
func (h *CustomerHandler) NoteRoutes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{noteID}", func(r chi.Router) {
		r.Put("/", h.updateNote)
		r.Put("/pin", h.pinNote)
		r.Delete("/", h.deleteNote)
	})
	return r
}

func (h *CustomerHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	customers, total, err := h.crm.Search(r.Context(), shopFrom(r), q.Get("query"), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Customer search failed")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
	})
}

type syncCustomerRequest struct {
	ShopifyCustomerID int64 `json:"shopify_customer_id" validate:"required"`
}

func (h *CustomerHandler) sync(w http.ResponseWriter, r *http.Request) {
	var req syncCustomerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.crm.SyncCustomerFromShopify(r.Context(), shopFrom(r), req.ShopifyCustomerID)
	if err != nil {
		h.logger.Error().Err(err).Int64("customerId", req.ShopifyCustomerID).Msg("Customer sync failed")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := h.crm.Detail(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type noteRequest struct {
	Body   string `json:"body" validate:"required"`
	Author string `json:"author"`
}

func (h *CustomerHandler) addNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req noteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.crm.AddNote(r.Context(), id, req.Body, req.Author)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *CustomerHandler) updateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req noteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.crm.UpdateNote(r.Context(), id, req.Body)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type pinNoteRequest struct {
	Pinned bool `json:"pinned"`
}

func (h *CustomerHandler) pinNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req pinNoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.crm.SetNotePinned(r.Context(), id, req.Pinned)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *CustomerHandler) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "noteID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.crm.DeleteNote(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *CustomerHandler) conversation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, err := h.sms.Conversation(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

type sendSmsRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *CustomerHandler) sendSms(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "customerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req sendSmsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := h.sms.Send(r.Context(), shopFrom(r), id, req.Body)
	if err != nil {
		h.logger.Error().Err(err).Str("customer", id.String()).Msg("Failed to send SMS")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
