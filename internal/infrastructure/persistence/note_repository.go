package persistence

import (
	"context"
	"fmt"

	"pickupstand/internal/domain"
	"pickupstand/internal/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNoteRepository implements NoteRepository using GORM.
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new note repository.
func NewGormNoteRepository(db *gorm.DB) ports.NoteRepository {
	return &GormNoteRepository{db: db}
}

// Create persists a new note.
func (r *GormNoteRepository) Create(ctx context.Context, note *domain.CustomerNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// Get finds a note by ID.
func (r *GormNoteRepository) Get(ctx context.Context, id uuid.UUID) (*domain.CustomerNote, error) {
	var note domain.CustomerNote
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &note, nil
}

// ListByCustomer lists notes pinned-first, newest-first within each
// group.
func (r *GormNoteRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.CustomerNote, error) {
	var notes []*domain.CustomerNote
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("pinned DESC, created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// CountByCustomer returns the customer's note count.
func (r *GormNoteRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.CustomerNote{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update saves changes to an existing note.
func (r *GormNoteRepository) Update(ctx context.Context, note *domain.CustomerNote) error {
	res := r.db.WithContext(ctx).Model(&domain.CustomerNote{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{"body": note.Body, "pinned": note.Pinned})
	if res.Error != nil {
		return fmt.Errorf("failed to update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a note.
func (r *GormNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.CustomerNote{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
