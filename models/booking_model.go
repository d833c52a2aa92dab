package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

type Booking struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"booking_id"`
	ListingID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"property_id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Status       BookingStatus `gorm:"size:10;not null;default:'pending'" json:"status"`
	CheckInDate  time.Time     `gorm:"type:date;not null" json:"check_in_date"`
	CheckOutDate time.Time     `gorm:"type:date;not null" json:"check_out_date"`
	TotalAmount  float64       `gorm:"type:numeric(10,2);not null" json:"total_amount"`

	Listing Listing `gorm:"foreignkey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignkey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TotalNights is the stay length in whole days.
func (b *Booking) TotalNights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
