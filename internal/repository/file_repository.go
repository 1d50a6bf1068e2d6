package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.UploadedFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	var file domain.UploadedFile
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) ListByPurpose(ctx context.Context, purpose string, limit int) ([]domain.UploadedFile, error) {
	var files []domain.UploadedFile
	err := r.db.WithContext(ctx).
		Where("purpose = ?", purpose).
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UploadedFile{}, "id = ?", id).Error
}
