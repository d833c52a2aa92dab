package jobs

import (
	"errors"
	"log"
	"time"

	"github.com/abelgirma/gojo-travel/database"
	"github.com/abelgirma/gojo-travel/handlers"
	"github.com/abelgirma/gojo-travel/models"
	"github.com/abelgirma/gojo-travel/payments"
)

const staleAfter = 30 * time.Minute

// ReconcileStalePayments re-verifies payments that have sat in processing
// longer than staleAfter, covering lost gateway callbacks. It goes through
// the same idempotent verification path as the HTTP surface, so running it
// concurrently with client polling is safe.
func ReconcileStalePayments() {
	cutoff := time.Now().Add(-staleAfter)

	var stale []models.Payment
	err := database.DB.
		Where("payment_status = ? AND updated_at < ?", models.PaymentProcessing, cutoff).
		Order("updated_at ASC").
		Limit(50).
		Find(&stale).Error
	if err != nil {
		log.Printf("🔥 Failed to load stale payments: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	log.Printf("Reconciling %d stale payment(s)", len(stale))
	for _, payment := range stale {
		outcome, err := handlers.VerifyAndApply(payment.TransactionRef)
		if err != nil {
			if errors.Is(err, payments.ErrGatewayUnreachable) {
				// Gateway is down; the next run will retry the rest too.
				log.Printf("Gateway unreachable while reconciling %s, stopping this run", payment.TransactionRef)
				return
			}
			log.Printf("🔥 Failed to reconcile payment %s: %v", payment.TransactionRef, err)
			continue
		}
		if outcome.PaymentStatus != models.PaymentProcessing {
			log.Printf("Payment %s reconciled to %s", payment.TransactionRef, outcome.PaymentStatus)
		}
	}
}
