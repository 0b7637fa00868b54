package application

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PlansService manages selling plan groups and subscription discount
// codes. Shopify is the system of record for both; the local plan
// group rows exist so the order webhook can resolve frequencies
// without an API round trip.
type PlansService struct {
	shops         *ShopService
	shopify       ports.ShopifyClient
	subscriptions ports.SubscriptionRepository
	logger        zerolog.Logger
}

// NewPlansService creates a new plans service.
func NewPlansService(
	shops *ShopService,
	shopify ports.ShopifyClient,
	subscriptions ports.SubscriptionRepository,
	logger zerolog.Logger,
) *PlansService {
	return &PlansService{
		shops:         shops,
		shopify:       shopify,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// CreateGroup creates the group in Shopify and persists the local
// record with the returned GIDs.
func (s *PlansService) CreateGroup(ctx context.Context, shopDomain string, def domain.SellingPlanGroupDefinition) (*domain.SubscriptionPlanGroup, error) {
	if len(def.Plans) == 0 {
		return nil, fmt.Errorf("plan group needs at least one frequency")
	}
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	result, err := s.shopify.SellingPlanGroupCreate(ctx, shopDomain, token, def)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("group", def.Name).Msg("Failed to create selling plan group")
		return nil, err
	}

	group := &domain.SubscriptionPlanGroup{
		ShopDomain:   shopDomain,
		Name:         def.Name,
		MerchantCode: def.MerchantCode,
		ShopifyGID:   result.GroupGID,
	}
	for i, p := range def.Plans {
		freq := domain.SubscriptionPlanFrequency{
			IntervalUnit:    p.IntervalUnit,
			IntervalCount:   p.IntervalCount,
			DiscountPercent: p.DiscountPercent,
		}
		if i < len(result.PlanGIDs) {
			freq.ShopifyGID = result.PlanGIDs[i]
		}
		group.Frequencies = append(group.Frequencies, freq)
	}
	if err := s.subscriptions.SavePlanGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("group created upstream but failed to persist locally: %w", err)
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Str("group", group.Name).
		Str("gid", group.ShopifyGID).
		Msg("Created selling plan group")
	return group, nil
}

// UpdateGroup updates the group in Shopify and the local record.
func (s *PlansService) UpdateGroup(ctx context.Context, shopDomain string, groupID uuid.UUID, def domain.SellingPlanGroupDefinition) (*domain.SubscriptionPlanGroup, error) {
	group, err := s.subscriptions.GetPlanGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	if err := s.shopify.SellingPlanGroupUpdate(ctx, shopDomain, token, group.ShopifyGID, def); err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("gid", group.ShopifyGID).Msg("Failed to update selling plan group")
		return nil, err
	}

	group.Name = def.Name
	group.MerchantCode = def.MerchantCode
	group.Frequencies = nil
	for _, p := range def.Plans {
		group.Frequencies = append(group.Frequencies, domain.SubscriptionPlanFrequency{
			IntervalUnit:    p.IntervalUnit,
			IntervalCount:   p.IntervalCount,
			DiscountPercent: p.DiscountPercent,
		})
	}
	if err := s.subscriptions.SavePlanGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes the group upstream and locally.
func (s *PlansService) DeleteGroup(ctx context.Context, shopDomain string, groupID uuid.UUID) error {
	group, err := s.subscriptions.GetPlanGroup(ctx, groupID)
	if err != nil {
		return err
	}
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return err
	}
	if group.ShopifyGID != "" {
		if err := s.shopify.SellingPlanGroupDelete(ctx, shopDomain, token, group.ShopifyGID); err != nil {
			return err
		}
	}
	return s.subscriptions.DeletePlanGroup(ctx, groupID)
}

// ListGroups lists the local plan group records.
func (s *PlansService) ListGroups(ctx context.Context, shopDomain string) ([]*domain.SubscriptionPlanGroup, error) {
	return s.subscriptions.ListPlanGroups(ctx, shopDomain)
}

// AssignProducts adds products to a plan group.
func (s *PlansService) AssignProducts(ctx context.Context, shopDomain string, groupID uuid.UUID, productGIDs []string) error {
	return s.groupProducts(ctx, shopDomain, groupID, productGIDs, true)
}

// UnassignProducts removes products from a plan group.
func (s *PlansService) UnassignProducts(ctx context.Context, shopDomain string, groupID uuid.UUID, productGIDs []string) error {
	return s.groupProducts(ctx, shopDomain, groupID, productGIDs, false)
}

func (s *PlansService) groupProducts(ctx context.Context, shopDomain string, groupID uuid.UUID, productGIDs []string, add bool) error {
	if len(productGIDs) == 0 {
		return fmt.Errorf("no products given")
	}
	group, err := s.subscriptions.GetPlanGroup(ctx, groupID)
	if err != nil {
		return err
	}
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return err
	}
	if add {
		return s.shopify.SellingPlanGroupAddProducts(ctx, shopDomain, token, group.ShopifyGID, productGIDs)
	}
	return s.shopify.SellingPlanGroupRemoveProducts(ctx, shopDomain, token, group.ShopifyGID, productGIDs)
}

// GetConfig returns the shop's subscription ingestion config.
func (s *PlansService) GetConfig(ctx context.Context, shopDomain string) (*domain.SellingPlanConfig, error) {
	return s.subscriptions.GetConfig(ctx, shopDomain)
}

// SaveConfig updates the shop's subscription ingestion config.
func (s *PlansService) SaveConfig(ctx context.Context, cfg *domain.SellingPlanConfig) error {
	return s.subscriptions.SaveConfig(ctx, cfg)
}

// CreateDiscount creates a basic percentage discount code and returns
// the discount node GID.
func (s *PlansService) CreateDiscount(ctx context.Context, shopDomain string, input domain.DiscountCodeInput) (string, error) {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return "", err
	}
	gid, err := s.shopify.DiscountCodeCreate(ctx, shopDomain, token, input)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Str("code", input.Code).Msg("Failed to create discount code")
		return "", err
	}
	s.logger.Info().Str("shop", shopDomain).Str("code", input.Code).Str("gid", gid).Msg("Created discount code")
	return gid, nil
}

// UpdateDiscount updates a discount code.
func (s *PlansService) UpdateDiscount(ctx context.Context, shopDomain, discountGID string, input domain.DiscountCodeInput) error {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return err
	}
	return s.shopify.DiscountCodeUpdate(ctx, shopDomain, token, discountGID, input)
}

// DeactivateDiscount deactivates a discount code.
func (s *PlansService) DeactivateDiscount(ctx context.Context, shopDomain, discountGID string) error {
	token, err := s.shops.AccessToken(ctx, shopDomain)
	if err != nil {
		return err
	}
	return s.shopify.DiscountCodeDeactivate(ctx, shopDomain, token, discountGID)
}
