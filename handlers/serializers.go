package handlers

import (
	"time"

	"github.com/abelgirma/gojo-travel/models"
	"github.com/google/uuid"
)

type BookingSummary struct {
	BookingID    uuid.UUID            `json:"booking_id"`
	PropertyName string               `json:"property_name"`
	UserEmail    string               `json:"user_email"`
	Status       models.BookingStatus `json:"status"`
	CheckInDate  string               `json:"check_in_date"`
	CheckOutDate string               `json:"check_out_date"`
	TotalNights  int                  `json:"total_nights"`
	TotalAmount  float64              `json:"total_amount"`
}

type PaymentResponse struct {
	PaymentID          uuid.UUID            `json:"payment_id"`
	BookingID          uuid.UUID            `json:"booking_id"`
	Amount             float64              `json:"amount"`
	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	PaymentMethod      string               `json:"payment_method"`
	TxRef              string               `json:"tx_ref"`
	ChapaTransactionID *string              `json:"chapa_transaction_id"`
	PaymentDate        *time.Time           `json:"payment_date"`
	Currency           string               `json:"currency"`
	PaymentDescription string               `json:"payment_description"`
	FailureReason      string               `json:"failure_reason"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	IsSuccessful       bool                 `json:"is_successful"`
	CanBeRefunded      bool                 `json:"can_be_refunded"`
	BookingDetails     BookingSummary       `json:"booking_details"`
}

func newPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:          p.ID,
		BookingID:          p.BookingID,
		Amount:             p.Amount,
		PaymentStatus:      p.PaymentStatus,
		PaymentMethod:      p.PaymentMethod,
		TxRef:              p.TransactionRef,
		ChapaTransactionID: p.GatewayTxnID,
		PaymentDate:        p.PaymentDate,
		Currency:           p.Currency,
		PaymentDescription: p.Description,
		FailureReason:      p.FailureReason,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		IsSuccessful:       p.IsSuccessful(),
		CanBeRefunded:      p.CanBeRefunded(),
		BookingDetails: BookingSummary{
			BookingID:    p.Booking.ID,
			PropertyName: p.Booking.Listing.Name,
			UserEmail:    p.Booking.User.Email,
			Status:       p.Booking.Status,
			CheckInDate:  p.Booking.CheckInDate.Format("2006-01-02"),
			CheckOutDate: p.Booking.CheckOutDate.Format("2006-01-02"),
			TotalNights:  p.Booking.TotalNights(),
			TotalAmount:  p.Booking.TotalAmount,
		},
	}
}
