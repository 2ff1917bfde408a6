package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/ticketing"
)

func TestCatalogService_CreatePark_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := ParkInput{DistrictID: env.district.ID, Name: "Bannerghatta", AdultPrice: 100, ChildPrice: 50, Capacity: 20}

	cases := []struct {
		name  string
		edit  func(*ParkInput)
		want  error
		field string
	}{
		{"missing name", func(in *ParkInput) { in.Name = " " }, ticketing.ErrMissingField, "name"},
		{"negative adult price", func(in *ParkInput) { in.AdultPrice = -1 }, ticketing.ErrInvalidPriceConfiguration, "adultPrice"},
		{"negative child price", func(in *ParkInput) { in.ChildPrice = -1 }, ticketing.ErrInvalidPriceConfiguration, "childPrice"},
		{"zero capacity", func(in *ParkInput) { in.Capacity = 0 }, ticketing.ErrInvalidCapacity, "capacity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.edit(&in)
			_, err := env.catalog.CreatePark(ctx, env.superAdmin, in)
			var fe *ticketing.FieldError
			if !errors.Is(err, tc.want) || !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("err = %v, want %v on %s", err, tc.want, tc.field)
			}
		})
	}

	in := base
	in.DistrictID = uuid.New()
	if _, err := env.catalog.CreatePark(ctx, env.superAdmin, in); !errors.Is(err, ticketing.ErrDistrictNotFound) {
		t.Fatalf("unknown district err = %v", err)
	}

	if _, err := env.catalog.CreatePark(ctx, parkAdmin(env.park), base); !errors.Is(err, ticketing.ErrWrongRole) {
		t.Fatalf("park-admin create err = %v", err)
	}

	p, err := env.catalog.CreatePark(ctx, env.superAdmin, base)
	if err != nil || !p.IsActive {
		t.Fatalf("create = %+v, %v", p, err)
	}
}

func TestCatalogService_UpdatePark_Scoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := parkAdmin(env.park)

	in := ParkInput{Name: "Cubbon Park", AdultPrice: 15000, ChildPrice: 6000, Capacity: 40, Features: []string{"bandstand"}}
	p, err := env.catalog.UpdatePark(ctx, admin, env.park.ID, in)
	if err != nil {
		t.Fatalf("UpdatePark: %v", err)
	}
	if p.AdultPrice != 15000 || p.Capacity != 40 || p.DistrictID != env.district.ID || len(p.Features) != 1 {
		t.Fatalf("updated = %+v", p)
	}

	if _, err := env.catalog.UpdatePark(ctx, admin, env.other.ID, in); !errors.Is(err, ticketing.ErrWrongPark) {
		t.Fatalf("foreign park update err = %v", err)
	}
	if _, err := env.catalog.UpdatePark(ctx, checker(env.park), env.park.ID, in); !errors.Is(err, ticketing.ErrWrongRole) {
		t.Fatalf("checker update err = %v", err)
	}

	moved := in
	moved.DistrictID = uuid.New()
	if _, err := env.catalog.UpdatePark(ctx, admin, env.park.ID, moved); !errors.Is(err, ticketing.ErrWrongRole) {
		t.Fatalf("park-admin district move err = %v", err)
	}

	off, err := env.catalog.SetParkActive(ctx, admin, env.park.ID, false)
	if err != nil || off.IsActive {
		t.Fatalf("deactivate = %+v, %v", off, err)
	}
	active, _ := env.catalog.ListParks(ctx, nil, true)
	if len(active) != 1 || active[0].ID != env.other.ID {
		t.Fatalf("active parks = %v", active)
	}
}

func TestCatalogService_DeleteRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.catalog.DeleteDistrict(ctx, env.superAdmin, env.district.ID); !errors.Is(err, ticketing.ErrDistrictHasParks) {
		t.Fatalf("delete populated district err = %v", err)
	}

	env.book(t, env.park, 1, 0)
	if err := env.catalog.DeletePark(ctx, env.superAdmin, env.park.ID); !errors.Is(err, ticketing.ErrParkHasBookings) {
		t.Fatalf("delete booked park err = %v", err)
	}
	if err := env.catalog.DeletePark(ctx, parkAdmin(env.other), env.other.ID); !errors.Is(err, ticketing.ErrWrongRole) {
		t.Fatalf("park-admin delete err = %v", err)
	}
	if err := env.catalog.DeletePark(ctx, env.superAdmin, env.other.ID); err != nil {
		t.Fatalf("delete empty park: %v", err)
	}
	if _, err := env.catalog.GetPark(ctx, env.other.ID); !errors.Is(err, ticketing.ErrParkNotFound) {
		t.Fatalf("get deleted park err = %v", err)
	}

	empty, err := env.catalog.CreateDistrict(ctx, env.superAdmin, DistrictInput{Name: "Kodagu"})
	if err != nil {
		t.Fatalf("create district: %v", err)
	}
	if err := env.catalog.DeleteDistrict(ctx, env.superAdmin, empty.ID); err != nil {
		t.Fatalf("delete empty district: %v", err)
	}
	if err := env.catalog.DeleteDistrict(ctx, env.superAdmin, empty.ID); !errors.Is(err, ticketing.ErrDistrictNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}
}

func TestCatalogService_Districts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := DistrictInput{Name: " Bengaluru ", Description: "Garden city"}
	if _, err := env.catalog.UpdateDistrict(ctx, parkAdmin(env.park), env.district.ID, in); !errors.Is(err, ticketing.ErrWrongRole) {
		t.Fatalf("park-admin update err = %v", err)
	}
	if _, err := env.catalog.UpdateDistrict(ctx, env.superAdmin, env.district.ID, DistrictInput{}); !errors.Is(err, ticketing.ErrMissingField) {
		t.Fatalf("empty name err = %v", err)
	}
	if _, err := env.catalog.UpdateDistrict(ctx, env.superAdmin, uuid.New(), in); !errors.Is(err, ticketing.ErrDistrictNotFound) {
		t.Fatalf("unknown district err = %v", err)
	}

	d, err := env.catalog.UpdateDistrict(ctx, env.superAdmin, env.district.ID, in)
	if err != nil {
		t.Fatalf("UpdateDistrict: %v", err)
	}
	if d.Name != "Bengaluru" || d.Description != "Garden city" {
		t.Fatalf("district = %+v", d)
	}

	got, err := env.catalog.GetDistrict(ctx, env.district.ID)
	if err != nil || got.Name != "Bengaluru" {
		t.Fatalf("GetDistrict = %+v, %v", got, err)
	}

	if _, err := env.catalog.SetParkActive(ctx, env.superAdmin, env.park.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	all, err := env.catalog.ListDistrictParks(ctx, env.district.ID, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("district parks = %d, %v", len(all), err)
	}
	active, err := env.catalog.ListDistrictParks(ctx, env.district.ID, true)
	if err != nil || len(active) != 1 || active[0].ID != env.other.ID {
		t.Fatalf("active district parks = %v, %v", active, err)
	}
	if _, err := env.catalog.ListDistrictParks(ctx, uuid.New(), true); !errors.Is(err, ticketing.ErrDistrictNotFound) {
		t.Fatalf("unknown district parks err = %v", err)
	}
}
