package api

import (
	"net/http"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DraftOrderHandler serves phone-order draft order creation and
// completion.
type DraftOrderHandler struct {
	drafts *application.DraftOrderService
	logger zerolog.Logger
}

// NewDraftOrderHandler creates a new draft order handler.
func NewDraftOrderHandler(drafts *application.DraftOrderService, logger zerolog.Logger) *DraftOrderHandler {
	return &DraftOrderHandler{drafts: drafts, logger: logger}
}

// Routes mounts the draft order endpoints.
func (h *DraftOrderHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listOpen)
	r.Post("/", h.create)
	r.Post("/complete", h.complete)
	return r
}

type draftLineItemRequest struct {
	VariantGID string           `json:"variant_gid"`
	Title      string           `json:"title"`
	Quantity   int              `json:"quantity" validate:"min=1"`
	Price      *decimal.Decimal `json:"price"`
}

type draftOrderRequest struct {
	CustomerGID string                 `json:"customer_gid"`
	Email       string                 `json:"email"`
	LineItems   []draftLineItemRequest `json:"line_items" validate:"required,min=1,dive"`
	Note        string                 `json:"note"`
	Tags        []string               `json:"tags"`
	Attributes  []domain.Attribute     `json:"attributes"`
	Discount    *struct {
		Description string          `json:"description"`
		ValueType   string          `json:"value_type" validate:"omitempty,oneof=FIXED_AMOUNT PERCENTAGE"`
		Value       decimal.Decimal `json:"value"`
	} `json:"discount"`
}

func (h *DraftOrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req draftOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := domain.DraftOrderInput{
		CustomerGID: req.CustomerGID,
		Email:       req.Email,
		Note:        req.Note,
		Tags:        req.Tags,
		Attributes:  req.Attributes,
	}
	for _, li := range req.LineItems {
		input.LineItems = append(input.LineItems, domain.DraftOrderLineItem{
			VariantGID: li.VariantGID,
			Title:      li.Title,
			Quantity:   li.Quantity,
			Price:      li.Price,
		})
	}
	if req.Discount != nil {
		input.Discount = &domain.DraftOrderDiscount{
			Description: req.Discount.Description,
			ValueType:   req.Discount.ValueType,
			Value:       req.Discount.Value,
		}
	}

	draft, err := h.drafts.Create(r.Context(), shopFrom(r), input)
	if err != nil {
		h.logger.Error().Err(err).Msg("Draft order creation failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

type completeDraftRequest struct {
	DraftGID   string `json:"draft_gid" validate:"required"`
	CustomerID string `json:"customer_id"`
}

func (h *DraftOrderHandler) complete(w http.ResponseWriter, r *http.Request) {
	var req completeDraftRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var customerID *uuid.UUID
	if req.CustomerID != "" {
		id, err := pathUUID(req.CustomerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		customerID = &id
	}
	draft, err := h.drafts.Complete(r.Context(), shopFrom(r), req.DraftGID, customerID)
	if err != nil {
		h.logger.Error().Err(err).Str("draft", req.DraftGID).Msg("Draft order completion failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *DraftOrderHandler) listOpen(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.drafts.ListOpen(r.Context(), shopFrom(r))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"draft_orders": drafts})
}
