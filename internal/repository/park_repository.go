package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/ticketing"
)

type ParkFilter struct {
	DistrictID *uuid.UUID
	ActiveOnly bool
}

type ParkRepository interface {
	// GetPark returns ticketing.ErrParkNotFound for unknown ids.
	GetPark(ctx context.Context, id uuid.UUID) (*model.Park, error)
	Create(ctx context.Context, park *model.Park) error
	// Update saves the editable fields; IsActive is toggled separately.
	Update(ctx context.Context, park *model.Park) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ParkFilter) ([]model.Park, error)
	CountByDistrict(ctx context.Context, districtID uuid.UUID) (int64, error)
}

type GormParkRepository struct {
	db *gorm.DB
}

func NewGormParkRepository(db *gorm.DB) *GormParkRepository {
	return &GormParkRepository{db: db}
}

func (r *GormParkRepository) GetPark(ctx context.Context, id uuid.UUID) (*model.Park, error) {
	var p model.Park
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("get park", err, ticketing.ErrParkNotFound)
	}
	return &p, nil
}

func (r *GormParkRepository) Create(ctx context.Context, park *model.Park) error {
	return translate("create park", r.db.WithContext(ctx).Create(park).Error, nil)
}

func (r *GormParkRepository) Update(ctx context.Context, park *model.Park) error {
	res := r.db.WithContext(ctx).
		Model(&model.Park{}).
		Where("id = ?", park.ID).
		Select("district_id", "name", "adult_price", "child_price", "capacity",
			"features", "opening_hours", "description", "image", "updated_at").
		Updates(park)
	if res.Error != nil {
		return translate("update park", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrParkNotFound
	}
	return nil
}

func (r *GormParkRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Park{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return translate("set park active", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrParkNotFound
	}
	return nil
}

func (r *GormParkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Park{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete park", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrParkNotFound
	}
	return nil
}

func (r *GormParkRepository) List(ctx context.Context, filter ParkFilter) ([]model.Park, error) {
	q := r.db.WithContext(ctx).Model(&model.Park{})
	if filter.DistrictID != nil {
		q = q.Where("district_id = ?", *filter.DistrictID)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var parks []model.Park
	if err := q.Order("name ASC").Find(&parks).Error; err != nil {
		return nil, translate("list parks", err, nil)
	}
	return parks, nil
}

func (r *GormParkRepository) CountByDistrict(ctx context.Context, districtID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Park{}).
		Where("district_id = ?", districtID).
		Count(&n).Error
	return n, translate("count parks", err, nil)
}
