package webhook_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pickupstand/internal/application"
	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderCreatedHandler ingests orders/create: it mirrors the customer,
// captures line items, books the anchor pickup from the order's note
// attributes, and projects forward occurrences when the order is a
// subscription.
type OrderCreatedHandler struct {
	crm           *application.CRMService
	calendar      *application.CalendarService
	subscriptions ports.SubscriptionRepository
	schedules     ports.ScheduleRepository
	orderItems    ports.OrderItemRepository
	pickups       ports.PickupRepository
	logger        zerolog.Logger
}

// NewOrderCreatedHandler creates a new orders/create webhook handler.
func NewOrderCreatedHandler(
	crm *application.CRMService,
	calendar *application.CalendarService,
	subscriptions ports.SubscriptionRepository,
	schedules ports.ScheduleRepository,
	orderItems ports.OrderItemRepository,
	pickups ports.PickupRepository,
	logger zerolog.Logger,
) *OrderCreatedHandler {
	return &OrderCreatedHandler{
		crm:           crm,
		calendar:      calendar,
		subscriptions: subscriptions,
		schedules:     schedules,
		orderItems:    orderItems,
		pickups:       pickups,
		logger:        logger,
	}
}

// orderPayload is the subset of the orders/create body this app reads.
type orderPayload struct {
	ID                int64  `json:"id"`
	AdminGraphqlAPIID string `json:"admin_graphql_api_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Customer          *struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Tags      string `json:"tags"`
	} `json:"customer"`
	NoteAttributes []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"note_attributes"`
	LineItems []struct {
		Title                 string `json:"title"`
		VariantTitle          string `json:"variant_title"`
		Quantity              int    `json:"quantity"`
		SellingPlanAllocation *struct {
			SellingPlan struct {
				SellingPlanID int64  `json:"selling_plan_id"`
				Name          string `json:"name"`
			} `json:"selling_plan"`
		} `json:"selling_plan_allocation"`
	} `json:"line_items"`
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderCreatedHandler) CanHandle(topic string) bool {
	return topic == "orders/create"
}

// Handle processes an orders/create webhook event
func (h *OrderCreatedHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var order orderPayload
	if err := json.Unmarshal(event.Payload, &order); err != nil {
		return fmt.Errorf("failed to parse order payload: %w", err)
	}

	if order.Customer == nil {
		// POS / imported orders can arrive customerless. Nothing to
		// schedule against.
		h.logger.Warn().
			Str("shop", event.ShopDomain).
			Str("order", order.Name).
			Msg("Order has no customer, skipping ingestion")
		return nil
	}

	customer, err := h.crm.SyncCustomer(ctx, event.ShopDomain, application.CustomerSync{
		ShopifyCustomerID: order.Customer.ID,
		FirstName:         order.Customer.FirstName,
		LastName:          order.Customer.LastName,
		Email:             order.Customer.Email,
		Phone:             order.Customer.Phone,
		Tags:              order.Customer.Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to sync order customer: %w", err)
	}

	if err := h.captureLineItems(ctx, event.ShopDomain, order, customer.ID); err != nil {
		return err
	}

	cfg, err := h.subscriptions.GetConfig(ctx, event.ShopDomain)
	if err != nil {
		return fmt.Errorf("failed to load ingestion config: %w", err)
	}
	intent := application.ParsePickupIntent(h.attributes(order), cfg)

	if !intent.HasDate() {
		if intent.DateRaw != "" {
			h.logger.Warn().
				Str("shop", event.ShopDomain).
				Str("order", order.Name).
				Str("rawDate", intent.DateRaw).
				Msg("Order carried an unparseable pickup date")
		}
		return nil
	}

	var locationID *uuid.UUID
	if intent.LocationName != "" {
		if loc, err := h.pickups.GetLocationByName(ctx, event.ShopDomain, intent.LocationName); err == nil {
			locationID = &loc.ID
		} else {
			h.logger.Warn().
				Str("shop", event.ShopDomain).
				Str("location", intent.LocationName).
				Msg("Order names an unknown pickup location")
		}
	}

	schedule := &domain.PickupSchedule{
		ShopDomain:     event.ShopDomain,
		CustomerID:     customer.ID,
		LocationID:     locationID,
		SlotLabel:      intent.SlotLabel,
		PickupDate:     *intent.Date,
		ShopifyOrderID: order.ID,
		OrderName:      order.Name,
	}
	if err := h.schedules.Create(ctx, schedule); err != nil {
		return fmt.Errorf("failed to create pickup schedule: %w", err)
	}
	if err := h.calendar.SyncSchedule(ctx, event.ShopDomain, schedule); err != nil {
		// Calendar is best-effort; the pickup stands either way.
		h.logger.Warn().Err(err).
			Str("shop", event.ShopDomain).
			Str("order", order.Name).
			Msg("Failed to sync order pickup to calendar")
	}

	freq, isSubscription := h.resolveFrequency(ctx, event.ShopDomain, order, intent, cfg)
	if !isSubscription {
		return nil
	}
	if err := h.projectPickups(ctx, event.ShopDomain, order, customer.ID, intent, locationID, freq, cfg.ProjectionHorizon); err != nil {
		return err
	}

	h.logger.Info().
		Str("shop", event.ShopDomain).
		Str("order", order.Name).
		Str("frequency", freq.String()).
		Int("horizon", cfg.ProjectionHorizon).
		Msg("Projected subscription pickups")
	return nil
}

func (h *OrderCreatedHandler) attributes(order orderPayload) []domain.Attribute {
	attrs := make([]domain.Attribute, 0, len(order.NoteAttributes))
	for _, a := range order.NoteAttributes {
		attrs = append(attrs, domain.Attribute{Name: a.Name, Value: a.Value})
	}
	return attrs
}

func (h *OrderCreatedHandler) captureLineItems(ctx context.Context, shopDomain string, order orderPayload, customerID uuid.UUID) error {
	items := make([]*domain.OrderItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		item := &domain.OrderItem{
			ShopDomain:     shopDomain,
			ShopifyOrderID: order.ID,
			OrderName:      order.Name,
			CustomerID:     customerID,
			Title:          li.Title,
			VariantTitle:   li.VariantTitle,
			Quantity:       li.Quantity,
		}
		if li.SellingPlanAllocation != nil {
			item.SellingPlanName = li.SellingPlanAllocation.SellingPlan.Name
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	if err := h.orderItems.CreateBatch(ctx, items); err != nil {
		return fmt.Errorf("failed to capture line items: %w", err)
	}
	return nil
}

// resolveFrequency decides whether the order is a subscription and at
// what cadence. A selling-plan allocation wins over the frequency note
// attribute; plan cadence resolves from the local plan group record
// first and falls back to parsing the plan name.
func (h *OrderCreatedHandler) resolveFrequency(ctx context.Context, shopDomain string, order orderPayload, intent application.PickupIntent, cfg *domain.SellingPlanConfig) (domain.Frequency, bool) {
	if cfg.HandleLegacyPlans {
		for _, li := range order.LineItems {
			if li.SellingPlanAllocation == nil {
				continue
			}
			plan := li.SellingPlanAllocation.SellingPlan
			planGID := fmt.Sprintf("gid://shopify/SellingPlan/%d", plan.SellingPlanID)
			if f, err := h.subscriptions.FindFrequencyByPlanGID(ctx, shopDomain, planGID); err == nil {
				return f.Frequency(), true
			} else if !errors.Is(err, domain.ErrNotFound) {
				h.logger.Warn().Err(err).Str("shop", shopDomain).Str("plan", planGID).Msg("Failed to resolve selling plan by gid")
			}
			if f, err := h.subscriptions.FindFrequencyByPlanName(ctx, shopDomain, plan.Name); err == nil {
				return f.Frequency(), true
			}
			if f, err := domain.ParseFrequency(plan.Name); err == nil {
				return f, true
			}
			h.logger.Warn().
				Str("shop", shopDomain).
				Str("plan", plan.Name).
				Msg("Selling plan cadence unresolved, falling back to default frequency")
			if f, err := domain.ParseFrequency(cfg.DefaultFrequency); err == nil {
				return f, true
			}
			return domain.Frequency{Unit: domain.IntervalWeek, Count: 1}, true
		}
	}

	if intent.FrequencyRaw == "" {
		return domain.Frequency{}, false
	}
	if f, err := domain.ParseFrequency(intent.FrequencyRaw); err == nil {
		return f, true
	}
	h.logger.Warn().
		Str("shop", shopDomain).
		Str("frequency", intent.FrequencyRaw).
		Msg("Unparseable frequency attribute, falling back to default frequency")
	if f, err := domain.ParseFrequency(cfg.DefaultFrequency); err == nil {
		return f, true
	}
	return domain.Frequency{Unit: domain.IntervalWeek, Count: 1}, true
}

func (h *OrderCreatedHandler) projectPickups(
	ctx context.Context,
	shopDomain string,
	order orderPayload,
	customerID uuid.UUID,
	intent application.PickupIntent,
	locationID *uuid.UUID,
	freq domain.Frequency,
	horizon int,
) error {
	anchor := *intent.Date

	// One blackout fetch covers the whole horizon plus slide room.
	windowEnd := anchor
	for i := 0; i < horizon; i++ {
		windowEnd = freq.Next(windowEnd)
	}
	windowEnd = windowEnd.AddDate(0, 0, 70)
	blackouts, err := h.pickups.ListBlackouts(ctx, shopDomain, anchor, windowEnd)
	if err != nil {
		return fmt.Errorf("failed to load blackouts: %w", err)
	}
	blocked := func(date time.Time) bool {
		for _, b := range blackouts {
			if !sameDate(b.Date, date) {
				continue
			}
			if b.LocationID == nil {
				return true
			}
			if locationID != nil && *b.LocationID == *locationID {
				return true
			}
		}
		return false
	}

	dates := application.ProjectOccurrences(anchor, freq, horizon, blocked)
	pickups := make([]*domain.SubscriptionPickup, 0, len(dates))
	for i, date := range dates {
		pickups = append(pickups, &domain.SubscriptionPickup{
			ShopDomain:    shopDomain,
			ContractGID:   order.AdminGraphqlAPIID,
			CustomerID:    customerID,
			Sequence:      i + 1,
			ProjectedDate: date,
			SlotLabel:     intent.SlotLabel,
			LocationID:    locationID,
			Status:        domain.SubscriptionPickupProjected,
		})
	}
	if err := h.subscriptions.CreatePickups(ctx, pickups); err != nil {
		return fmt.Errorf("failed to create projected pickups: %w", err)
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
