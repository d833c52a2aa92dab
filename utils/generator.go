package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/abelgirma/gojo-travel/models"
	"gorm.io/gorm"
)

const txRefPrefix = "tx_"

// GenerateTxRef produces a fresh transaction reference of the form
// tx_<16 hex chars>. A collision with an existing payment means the
// randomness source is broken, so it is an error rather than a retry.
func GenerateTxRef(db *gorm.DB) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %v", err)
	}
	ref := txRefPrefix + hex.EncodeToString(buf)

	var existing models.Payment
	err := db.Where("transaction_ref = ?", ref).First(&existing).Error
	if err == nil {
		return "", fmt.Errorf("transaction reference collision on %s", ref)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return ref, nil
}
