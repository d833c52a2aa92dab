package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abelgirma/gojo-travel/database"
	"github.com/abelgirma/gojo-travel/models"
	"github.com/abelgirma/gojo-travel/notifications"
	"github.com/abelgirma/gojo-travel/payments"
	"github.com/abelgirma/gojo-travel/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrPaymentNotFound means no payment row matches the transaction reference.
var ErrPaymentNotFound = errors.New("payment not found")

// notifyConfirmation is swapped out in tests to count notification attempts.
var notifyConfirmation = notifications.SendBookingConfirmation

// openStatuses are the only statuses the verification path may move away
// from. Everything else is terminal.
var openStatuses = []models.PaymentStatus{models.PaymentPending, models.PaymentProcessing}

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type VerifyPaymentRequest struct {
	TxRef string `json:"tx_ref" validate:"required"`
}

func InitiatePayment(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Booking ID is required"})
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	var booking models.Booking
	if err := database.DB.Preload("Listing").Preload("User").First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Database error"})
	}

	txRef, err := utils.GenerateTxRef(database.DB)
	if err != nil {
		log.Printf("🔥 Failed to generate transaction reference: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Internal server error"})
	}

	// The payment row is a permanent audit record for this attempt. It is
	// created before the gateway call and kept whatever the outcome.
	payment := models.Payment{
		BookingID:      booking.ID,
		Amount:         booking.TotalAmount,
		PaymentStatus:  models.PaymentPending,
		PaymentMethod:  models.MethodChapa,
		TransactionRef: txRef,
		Currency:       "ETB",
		Description:    fmt.Sprintf("Payment for booking %s", booking.ID),
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		log.Printf("🔥 Failed to create payment record: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to create payment record"})
	}

	phone := ""
	if booking.User.PhoneNumber != nil {
		phone = *booking.User.PhoneNumber
	}
	result, err := payments.Client.Initiate(payments.InitiateRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Email:       booking.User.Email,
		FirstName:   booking.User.FirstName,
		LastName:    booking.User.LastName,
		PhoneNumber: phone,
		TxRef:       txRef,
		Description: fmt.Sprintf("Payment for %s booking", booking.Listing.Name),
	})
	if err != nil {
		payment.PaymentStatus = models.PaymentFailed

		var rejected *payments.RejectedError
		if errors.As(err, &rejected) {
			payment.FailureReason = rejected.Message
			if saveErr := database.DB.Save(&payment).Error; saveErr != nil {
				log.Printf("🔥 Failed to record gateway rejection on payment %s: %v", payment.ID, saveErr)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": rejected.Message})
		}

		payment.FailureReason = err.Error()
		if saveErr := database.DB.Save(&payment).Error; saveErr != nil {
			log.Printf("🔥 Failed to record gateway failure on payment %s: %v", payment.ID, saveErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to communicate with payment gateway"})
	}

	payment.PaymentStatus = models.PaymentProcessing
	payment.GatewayTxnID = &result.TxRef
	if err := database.DB.Save(&payment).Error; err != nil {
		log.Printf("🔥 Failed to update payment %s after initiation: %v", payment.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to update payment record"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"payment_id":   payment.ID,
		"checkout_url": result.CheckoutURL,
		"tx_ref":       txRef,
		"message":      "Payment initiated successfully",
	})
}

func VerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Transaction reference is required"})
	}

	outcome, err := VerifyAndApply(req.TxRef)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Payment not found"})
		}
		var rejected *payments.RejectedError
		if errors.As(err, &rejected) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": rejected.Message})
		}
		if errors.Is(err, payments.ErrGatewayUnreachable) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to verify payment"})
		}
		log.Printf("🔥 Payment verification error for %s: %v", req.TxRef, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"payment_status": outcome.PaymentStatus,
		"booking_status": outcome.BookingStatus,
		"message":        "Payment status updated successfully",
	})
}

type chapaCallbackPayload struct {
	TxRef string `json:"tx_ref"`
}

// HandlePaymentCallback receives Chapa's out-of-band push. The payload's
// status claims are never trusted; only the transaction reference is taken
// and the authoritative state is re-derived through VerifyAndApply. The
// webhook is acked regardless of outcome so Chapa stops redelivering.
func HandlePaymentCallback(c *fiber.Ctx) error {
	var payload chapaCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("🔥 Cannot parse payment callback payload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false})
	}

	if payload.TxRef != "" {
		if _, err := VerifyAndApply(payload.TxRef); err != nil {
			log.Printf("Payment callback for %s not applied: %v", payload.TxRef, err)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// PaymentSuccess is the landing page Chapa redirects the payer to after
// checkout. It only acknowledges the return; the authoritative status comes
// from verification, not from reaching this page.
func PaymentSuccess(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment received. Your booking will be confirmed once the payment is verified.",
	})
}

type VerifyOutcome struct {
	PaymentStatus models.PaymentStatus
	BookingStatus models.BookingStatus
}

// VerifyAndApply is the single verification path, shared by the verify
// endpoint, the gateway callback and the reconciliation job. It is
// idempotent: terminal payments are returned as-is without contacting the
// gateway, and the status transition itself is a compare-and-set so two
// concurrent verifications cannot both claim the processing → completed
// edge (and double-send the confirmation email).
func VerifyAndApply(txRef string) (*VerifyOutcome, error) {
	var payment models.Payment
	if err := database.DB.Where("transaction_ref = ?", txRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.PaymentStatus.Terminal() {
		return currentOutcome(payment.ID)
	}

	result, err := payments.Client.Verify(txRef)
	if err != nil {
		// No authoritative answer; leave the row untouched so the caller
		// can retry.
		return nil, err
	}

	switch result.Status {
	case payments.VerifySuccess:
		confirmed, settled, err := settlePayment(&payment)
		if err != nil {
			return nil, err
		}
		if settled {
			notifyConfirmation(*confirmed, payment)
		}
	case payments.VerifyFailed:
		if err := failPayment(&payment, result.Message); err != nil {
			return nil, err
		}
	default:
		// Gateway has not settled the transaction; keep the stored status.
	}

	return currentOutcome(payment.ID)
}

// settlePayment moves an open payment to completed and confirms its booking.
// Returns settled=false when a concurrent verification won the transition.
func settlePayment(payment *models.Payment) (*models.Booking, bool, error) {
	now := time.Now()
	var booking models.Booking
	settled := false

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND payment_status IN ?", payment.ID, openStatuses).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentCompleted,
				"payment_date":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		settled = true

		if err := tx.Preload("Listing").Preload("User").First(&booking, "id = ?", payment.BookingID).Error; err != nil {
			return err
		}
		booking.Status = models.BookingConfirmed
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, false, err
	}
	if !settled {
		return nil, false, nil
	}

	payment.PaymentStatus = models.PaymentCompleted
	payment.PaymentDate = &now
	return &booking, true, nil
}

// failPayment records a gateway-confirmed failure. The booking is left alone.
func failPayment(payment *models.Payment, reason string) error {
	res := database.DB.Model(&models.Payment{}).
		Where("id = ? AND payment_status IN ?", payment.ID, openStatuses).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentFailed,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		payment.PaymentStatus = models.PaymentFailed
		payment.FailureReason = reason
	}
	return nil
}

func currentOutcome(paymentID uuid.UUID) (*VerifyOutcome, error) {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", payment.BookingID).Error; err != nil {
		return nil, err
	}
	return &VerifyOutcome{PaymentStatus: payment.PaymentStatus, BookingStatus: booking.Status}, nil
}

func GetPayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var payment models.Payment
	if err := database.DB.Preload("Booking.Listing").Preload("Booking.User").First(&payment, "id = ?", paymentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	return c.JSON(newPaymentResponse(payment))
}

func GetBookingPayments(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	var paymentRows []models.Payment
	if err := database.DB.Preload("Booking.Listing").Preload("Booking.User").
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&paymentRows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	responses := make([]PaymentResponse, 0, len(paymentRows))
	for _, p := range paymentRows {
		responses = append(responses, newPaymentResponse(p))
	}
	return c.JSON(responses)
}
