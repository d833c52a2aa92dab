package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Terminal reports whether a status admits no further transitions through
// the verification path. A refund, if ever implemented, is a separate flow.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentCompleted, PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

const (
	MethodChapa        = "chapa"
	MethodBankTransfer = "bank_transfer"
	MethodMobileMoney  = "mobile_money"
	MethodCreditCard   = "credit_card"
	MethodCash         = "cash"
)

// Payment is one attempt to settle a booking. A booking may accumulate
// several attempts; TransactionRef is the idempotency key correlating an
// attempt with the gateway and never changes once the row exists.
type Payment struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key" json:"payment_id"`
	BookingID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount         float64       `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentStatus  PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentMethod  string        `gorm:"size:20;not null;default:'chapa'" json:"payment_method"`
	TransactionRef string        `gorm:"size:255;not null;unique" json:"tx_ref"`
	GatewayTxnID   *string       `gorm:"size:255" json:"chapa_transaction_id"`
	PaymentDate    *time.Time    `json:"payment_date"`
	Currency       string        `gorm:"size:3;not null;default:'ETB'" json:"currency"`
	Description    string        `gorm:"type:text" json:"payment_description"`
	FailureReason  string        `gorm:"type:text" json:"failure_reason"`

	Booking Booking `gorm:"foreignkey:BookingID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Payment) IsSuccessful() bool {
	return p.PaymentStatus == PaymentCompleted
}

func (p *Payment) CanBeRefunded() bool {
	return p.PaymentStatus == PaymentCompleted && p.Amount > 0
}
