package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository allocates document numbers. Each entity type
// (currently only "quote") owns one row tracking the last number handed
// out.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextNumber atomically increments and returns the next number for the
// entity type, inside the caller's transaction. The row is read with
// SELECT FOR UPDATE so concurrent allocations serialize; with no row yet
// the sequence starts at 1.
func (r *NumberSequenceRepository) NextNumber(ctx context.Context, tx *gorm.DB, entityType string) (int, error) {
	var seq domain.NumberSequence

	result := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_type = ?", entityType).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		seq = domain.NumberSequence{
			EntityType: entityType,
			LastNumber: 1,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("failed to create number sequence: %w", err)
		}
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	next := seq.LastNumber + 1
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_number": next,
		"updated_at":  time.Now(),
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to update number sequence: %w", err)
	}

	return next, nil
}

// Current returns the last allocated number without incrementing.
// Returns 0 when no number has been allocated yet.
func (r *NumberSequenceRepository) Current(ctx context.Context, entityType string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastNumber, nil
}
