package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new customer repository.
func NewGormCustomerRepository(db *gorm.DB) ports.CustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Upsert saves a customer keyed by (shop_domain, shopify_customer_id).
// Bare customers (nil ShopifyCustomerID) are plain inserts.
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if customer.ShopifyCustomerID == nil {
		if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_domain"}, {Name: "shopify_customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "phone", "tags", "updated_at",
		}),
	}).Create(customer).Error
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	// On conflict the generated ID above never hit the table; reload so
	// the caller sees the persisted row.
	var saved domain.Customer
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND shopify_customer_id = ?", customer.ShopDomain, *customer.ShopifyCustomerID).
		First(&saved).Error; err != nil {
		return translate(err)
	}
	*customer = saved
	return nil
}

// GetByID finds a customer by its local ID.
func (r *GormCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetByShopifyID finds a customer by its Shopify customer ID.
func (r *GormCustomerRepository) GetByShopifyID(ctx context.Context, shopDomain string, shopifyCustomerID int64) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND shopify_customer_id = ?", shopDomain, shopifyCustomerID).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// GetByPhone finds a customer by exact phone match.
func (r *GormCustomerRepository) GetByPhone(ctx context.Context, shopDomain, phone string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).
		Where("shop_domain = ? AND phone = ?", shopDomain, phone).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Search lists customers matching the query on name, email, or phone,
// newest first, with the total count for paging.
func (r *GormCustomerRepository) Search(ctx context.Context, shopDomain, query string, limit, offset int) ([]*domain.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("shop_domain = ?", shopDomain)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR phone LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []*domain.Customer
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}
