package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type DistrictRepository interface {
	Create(ctx context.Context, district *model.District) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.District, error)
	List(ctx context.Context) ([]model.District, error)
	Update(ctx context.Context, district *model.District) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormDistrictRepository struct {
	db *gorm.DB
}

func NewGormDistrictRepository(db *gorm.DB) *GormDistrictRepository {
	return &GormDistrictRepository{db: db}
}

func (r *GormDistrictRepository) Create(ctx context.Context, district *model.District) error {
	return translate("create district", r.db.WithContext(ctx).Create(district).Error, nil)
}

func (r *GormDistrictRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.District, error) {
	var d model.District
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate("get district", err, ticketing.ErrDistrictNotFound)
	}
	return &d, nil
}

func (r *GormDistrictRepository) List(ctx context.Context) ([]model.District, error) {
	var districts []model.District
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&districts).Error; err != nil {
		return nil, translate("list districts", err, nil)
	}
	return districts, nil
}

func (r *GormDistrictRepository) Update(ctx context.Context, district *model.District) error {
	res := r.db.WithContext(ctx).
		Model(&model.District{}).
		Where("id = ?", district.ID).
		Select("name", "description", "image", "updated_at").
		Updates(district)
	if res.Error != nil {
		return translate("update district", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrDistrictNotFound
	}
	return nil
}

func (r *GormDistrictRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.District{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete district", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrDistrictNotFound
	}
	return nil
}
