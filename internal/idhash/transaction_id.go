package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"ad-revenue-lab/internal/domain"
)

// ComputeTransactionID computes a deterministic tx_id using SHA256.
// Formula: SHA256(source|seq|period|department|country|ad_type|amount|business_attribute|salesperson_id)
// source names the ledger the row came from and seq is its position there,
// so identical rows in one ledger still hash to distinct ids.
// Returns hex-encoded hash (64 characters).
func ComputeTransactionID(source string, seq int, t *domain.Transaction) string {
	data := fmt.Sprintf("%s|%d|%d|%s|%s|%s|%s|%s|%s",
		source,
		seq,
		t.Period,
		t.Department,
		t.Country,
		t.AdType,
		t.Amount.StringFixed(domain.AmountPrecision),
		t.BusinessAttribute,
		t.SalespersonID,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
