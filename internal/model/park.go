package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// districts
type District struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Image       string `gorm:"type:varchar(512)" json:"image,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Parks []Park `gorm:"foreignKey:DistrictID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"parks,omitempty"`
}

func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// parks
//
// AdultPrice and ChildPrice are in minor currency units (paise).
type Park struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DistrictID uuid.UUID `gorm:"type:uuid;not null;index" json:"districtId"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`

	AdultPrice int64 `gorm:"not null" json:"adultPrice"`
	ChildPrice int64 `gorm:"not null" json:"childPrice"`
	Capacity   int   `gorm:"not null" json:"capacity"`
	IsActive   bool  `gorm:"not null;index" json:"isActive"`

	Features     datatypes.JSONSlice[string] `json:"features"`
	OpeningHours string                      `gorm:"type:varchar(255)" json:"openingHours,omitempty"`
	Description  string                      `gorm:"type:text" json:"description,omitempty"`
	Image        string                      `gorm:"type:varchar(512)" json:"image,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	District *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
}

func (p *Park) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
