package repository

import (
	"context"

	"github.com/Eursukkul/booth-festa/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository interface {
	// Upsert stores snap unless a snapshot with the same version exists.
	// It reports whether a row was inserted.
	Upsert(ctx context.Context, snap *models.ConfigSnapshot) (bool, error)
	// Latest returns the most recently published snapshot or
	// gorm.ErrRecordNotFound.
	Latest(ctx context.Context) (*models.ConfigSnapshot, error)
	Count(ctx context.Context) (int64, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Upsert(ctx context.Context, snap *models.ConfigSnapshot) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "version"}},
		DoNothing: true,
	}).Create(snap)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *snapshotRepository) Latest(ctx context.Context) (*models.ConfigSnapshot, error) {
	var snap models.ConfigSnapshot
	if err := r.db.WithContext(ctx).
		Order("published_at DESC").
		Order("id DESC").
		First(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *snapshotRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ConfigSnapshot{}).Count(&n).Error
	return n, err
}
