package api

import (
	"net/http"
	"time"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlansHandler serves selling plan groups, the ingestion config, and
// discount codes.
type PlansHandler struct {
	plans  *application.PlansService
	logger zerolog.Logger
}

// NewPlansHandler creates a new plans handler.
func NewPlansHandler(plans *application.PlansService, logger zerolog.Logger) *PlansHandler {
	return &PlansHandler{plans: plans, logger: logger}
}

// Routes mounts the subscription admin endpoints.
func (h *PlansHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.listGroups)
		r.Post("/", h.createGroup)
		r.Route("/{groupID}", func(r chi.Router) {
			r.Put("/", h.updateGroup)
			r.Delete("/", h.deleteGroup)
			r.Post("/products", h.assignProducts)
			r.Delete("/products", h.unassignProducts)
		})
	})
	r.Get("/config", h.getConfig)
	r.Put("/config", h.saveConfig)
	r.Route("/discounts", func(r chi.Router) {
		r.Post("/", h.createDiscount)
		r.Put("/{discountGID}", h.updateDiscount)
		r.Delete("/{discountGID}", h.deactivateDiscount)
	})

	return r
}

type planRequest struct {
	Name            string          `json:"name"`
	IntervalUnit    string          `json:"interval_unit" validate:"required,oneof=week month"`
	IntervalCount   int             `json:"interval_count" validate:"min=1"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

type groupRequest struct {
	Name         string        `json:"name" validate:"required"`
	MerchantCode string        `json:"merchant_code"`
	Plans        []planRequest `json:"plans" validate:"required,min=1,dive"`
}

func (r groupRequest) definition() domain.SellingPlanGroupDefinition {
	def := domain.SellingPlanGroupDefinition{
		Name:         r.Name,
		MerchantCode: r.MerchantCode,
	}
	if def.MerchantCode == "" {
		def.MerchantCode = r.Name
	}
	for _, p := range r.Plans {
		def.Plans = append(def.Plans, domain.SellingPlanDefinition{
			Name:            p.Name,
			IntervalUnit:    domain.IntervalUnit(p.IntervalUnit),
			IntervalCount:   p.IntervalCount,
			DiscountPercent: p.DiscountPercent,
		})
	}
	return def
}

func (h *PlansHandler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.plans.ListGroups(r.Context(), shopFrom(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (h *PlansHandler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.plans.CreateGroup(r.Context(), shopFrom(r), req.definition())
	if err != nil {
		h.logger.Error().Err(err).Str("group", req.Name).Msg("Failed to create plan group")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *PlansHandler) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := h.plans.UpdateGroup(r.Context(), shopFrom(r), id, req.definition())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *PlansHandler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.plans.DeleteGroup(r.Context(), shopFrom(r), id); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type productsRequest struct {
	ProductGIDs []string `json:"product_gids" validate:"required,min=1"`
}

func (h *PlansHandler) assignProducts(w http.ResponseWriter, r *http.Request) {
	h.groupProducts(w, r, true)
}

func (h *PlansHandler) unassignProducts(w http.ResponseWriter, r *http.Request) {
	h.groupProducts(w, r, false)
}

func (h *PlansHandler) groupProducts(w http.ResponseWriter, r *http.Request, add bool) {
	id, err := pathUUID(chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req productsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if add {
		err = h.plans.AssignProducts(r.Context(), shopFrom(r), id, req.ProductGIDs)
	} else {
		err = h.plans.UnassignProducts(r.Context(), shopFrom(r), id, req.ProductGIDs)
	}
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PlansHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.plans.GetConfig(r.Context(), shopFrom(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type configRequest struct {
	ProjectionHorizon  int    `json:"projection_horizon" validate:"min=0,max=52"`
	DefaultFrequency   string `json:"default_frequency"`
	DateAttribute      string `json:"date_attribute"`
	TimeAttribute      string `json:"time_attribute"`
	LocationAttribute  string `json:"location_attribute"`
	FrequencyAttribute string `json:"frequency_attribute"`
	HandleLegacyPlans  bool   `json:"handle_legacy_plans"`
}

func (h *PlansHandler) saveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg := &domain.SellingPlanConfig{
		ShopDomain:         shopFrom(r),
		ProjectionHorizon:  req.ProjectionHorizon,
		DefaultFrequency:   req.DefaultFrequency,
		DateAttribute:      req.DateAttribute,
		TimeAttribute:      req.TimeAttribute,
		LocationAttribute:  req.LocationAttribute,
		FrequencyAttribute: req.FrequencyAttribute,
		HandleLegacyPlans:  req.HandleLegacyPlans,
	}
	if err := h.plans.SaveConfig(r.Context(), cfg); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type discountRequest struct {
	Title    string          `json:"title" validate:"required"`
	Code     string          `json:"code" validate:"required"`
	Percent  decimal.Decimal `json:"percent"`
	StartsAt *time.Time      `json:"starts_at"`
	EndsAt   *time.Time      `json:"ends_at"`
}

func (r discountRequest) input() domain.DiscountCodeInput {
	input := domain.DiscountCodeInput{
		Title:   r.Title,
		Code:    r.Code,
		Percent: r.Percent,
		EndsAt:  r.EndsAt,
	}
	if r.StartsAt != nil {
		input.StartsAt = *r.StartsAt
	} else {
		input.StartsAt = time.Now()
	}
	return input
}

func (h *PlansHandler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	gid, err := h.plans.CreateDiscount(r.Context(), shopFrom(r), req.input())
	if err != nil {
		h.logger.Error().Err(err).Str("code", req.Code).Msg("Failed to create discount")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"gid": gid})
}

func (h *PlansHandler) updateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.plans.UpdateDiscount(r.Context(), shopFrom(r), chi.URLParam(r, "discountGID"), req.input()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PlansHandler) deactivateDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.DeactivateDiscount(r.Context(), shopFrom(r), chi.URLParam(r, "discountGID")); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
