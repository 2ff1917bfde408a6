package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// CatalogService manages districts and parks.
type CatalogService struct {
	districts repository.DistrictRepository
	parks     repository.ParkRepository
	bookings  repository.BookingRepository

	log *logrus.Logger
}

func NewCatalogService(
	districts repository.DistrictRepository,
	parks repository.ParkRepository,
	bookings repository.BookingRepository,
	log *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		districts: districts,
		parks:     parks,
		bookings:  bookings,
		log:       log,
	}
}

type DistrictInput struct {
	Name        string
	Description string
	Image       string
}

func (s *CatalogService) CreateDistrict(ctx context.Context, actor ticketing.Actor, in DistrictInput) (*model.District, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageDistricts); err != nil {
		return nil, err
	}
	if trim(in.Name) == "" {
		return nil, &ticketing.FieldError{Field: "name", Err: ticketing.ErrMissingField}
	}

	d := &model.District{
		Name:        trim(in.Name),
		Description: trim(in.Description),
		Image:       trim(in.Image),
	}
	if err := s.districts.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"district_id": d.ID, "name": d.Name}).Info("district created")
	return d, nil
}

func (s *CatalogService) ListDistricts(ctx context.Context) ([]model.District, error) {
	return s.districts.List(ctx)
}

func (s *CatalogService) GetDistrict(ctx context.Context, id uuid.UUID) (*model.District, error) {
	return s.districts.GetByID(ctx, id)
}

// ListDistrictParks returns the parks of an existing district.
func (s *CatalogService) ListDistrictParks(ctx context.Context, id uuid.UUID, activeOnly bool) ([]model.Park, error) {
	if _, err := s.districts.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ListParks(ctx, &id, activeOnly)
}

func (s *CatalogService) UpdateDistrict(ctx context.Context, actor ticketing.Actor, id uuid.UUID, in DistrictInput) (*model.District, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageDistricts); err != nil {
		return nil, err
	}
	if trim(in.Name) == "" {
		return nil, &ticketing.FieldError{Field: "name", Err: ticketing.ErrMissingField}
	}
	d, err := s.districts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Name = trim(in.Name)
	d.Description = trim(in.Description)
	d.Image = trim(in.Image)
	if err := s.districts.Update(ctx, d); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"district_id": d.ID, "actor_id": actor.UserID}).Info("district updated")
	return s.districts.GetByID(ctx, id)
}

// DeleteDistrict refuses while the district still has parks.
func (s *CatalogService) DeleteDistrict(ctx context.Context, actor ticketing.Actor, id uuid.UUID) error {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageDistricts); err != nil {
		return err
	}
	if _, err := s.districts.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.parks.CountByDistrict(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ticketing.ErrDistrictHasParks
	}
	if err := s.districts.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("district_id", id).Info("district deleted")
	return nil
}

// ParkInput is the editable part of a park. Prices are minor units.
type ParkInput struct {
	DistrictID   uuid.UUID
	Name         string
	AdultPrice   int64
	ChildPrice   int64
	Capacity     int
	Features     []string
	OpeningHours string
	Description  string
	Image        string
}

func (s *CatalogService) validatePark(ctx context.Context, in ParkInput) error {
	if in.DistrictID == uuid.Nil {
		return &ticketing.FieldError{Field: "districtId", Err: ticketing.ErrMissingField}
	}
	if trim(in.Name) == "" {
		return &ticketing.FieldError{Field: "name", Err: ticketing.ErrMissingField}
	}
	if in.AdultPrice < 0 {
		return &ticketing.FieldError{Field: "adultPrice", Err: ticketing.ErrInvalidPriceConfiguration, Detail: "negative price"}
	}
	if in.ChildPrice < 0 {
		return &ticketing.FieldError{Field: "childPrice", Err: ticketing.ErrInvalidPriceConfiguration, Detail: "negative price"}
	}
	if in.Capacity <= 0 {
		return &ticketing.FieldError{Field: "capacity", Err: ticketing.ErrInvalidCapacity, Detail: "must be positive"}
	}
	_, err := s.districts.GetByID(ctx, in.DistrictID)
	return err
}

func (in ParkInput) apply(p *model.Park) {
	p.DistrictID = in.DistrictID
	p.Name = trim(in.Name)
	p.AdultPrice = in.AdultPrice
	p.ChildPrice = in.ChildPrice
	p.Capacity = in.Capacity
	p.Features = datatypes.NewJSONSlice(trimAll(in.Features))
	p.OpeningHours = trim(in.OpeningHours)
	p.Description = trim(in.Description)
	p.Image = trim(in.Image)
}

// CreatePark adds an active park. Super-admin only.
func (s *CatalogService) CreatePark(ctx context.Context, actor ticketing.Actor, in ParkInput) (*model.Park, error) {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageParks); err != nil {
		return nil, err
	}
	if err := s.validatePark(ctx, in); err != nil {
		return nil, err
	}

	p := &model.Park{IsActive: true}
	in.apply(p)
	if err := s.parks.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"park_id": p.ID, "name": p.Name}).Info("park created")
	return p, nil
}

// UpdatePark edits a park. Park admins may edit their own parks but not move
// them to another district.
func (s *CatalogService) UpdatePark(ctx context.Context, actor ticketing.Actor, id uuid.UUID, in ParkInput) (*model.Park, error) {
	if err := ticketing.AuthorizePark(actor, id, ticketing.ActionEditPark); err != nil {
		return nil, err
	}
	p, err := s.parks.GetPark(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DistrictID == uuid.Nil {
		in.DistrictID = p.DistrictID
	}
	if in.DistrictID != p.DistrictID {
		if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageParks); err != nil {
			return nil, err
		}
	}
	if err := s.validatePark(ctx, in); err != nil {
		return nil, err
	}

	in.apply(p)
	if err := s.parks.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"park_id": p.ID, "actor_id": actor.UserID}).Info("park updated")
	return s.parks.GetPark(ctx, id)
}

// SetParkActive toggles whether a park takes bookings. Existing bookings are
// left alone.
func (s *CatalogService) SetParkActive(ctx context.Context, actor ticketing.Actor, id uuid.UUID, active bool) (*model.Park, error) {
	if err := ticketing.AuthorizePark(actor, id, ticketing.ActionEditPark); err != nil {
		return nil, err
	}
	if err := s.parks.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"park_id": id, "active": active}).Info("park availability changed")
	return s.parks.GetPark(ctx, id)
}

// DeletePark refuses while bookings reference the park; deactivate it instead.
func (s *CatalogService) DeletePark(ctx context.Context, actor ticketing.Actor, id uuid.UUID) error {
	if err := ticketing.AuthorizeGlobal(actor, ticketing.ActionManageParks); err != nil {
		return err
	}
	if _, err := s.parks.GetPark(ctx, id); err != nil {
		return err
	}
	n, err := s.bookings.CountByPark(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ticketing.ErrParkHasBookings
	}
	if err := s.parks.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("park_id", id).Info("park deleted")
	return nil
}

func (s *CatalogService) GetPark(ctx context.Context, id uuid.UUID) (*model.Park, error) {
	return s.parks.GetPark(ctx, id)
}

func (s *CatalogService) ListParks(ctx context.Context, districtID *uuid.UUID, activeOnly bool) ([]model.Park, error) {
	return s.parks.List(ctx, repository.ParkFilter{DistrictID: districtID, ActiveOnly: activeOnly})
}
