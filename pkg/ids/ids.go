// Package ids generates the prefixed identifiers printed on customer-facing
// documents. Bills, discount requests, and returns use short random hex ids
// instead of UUIDs so they fit on receipts and read over the phone.
package ids

import (
	"crypto/rand"
	"encoding/hex"
)

const suffixBytes = 6

func newID(prefix string) string {
	buf := make([]byte, suffixBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return prefix + hex.EncodeToString(buf)
}

// NewBillID returns an invoice number like INV-3fa85f64b2c1.
func NewBillID() string { return newID("INV-") }

// NewDiscountRequestID returns an approval request id like DISC-9b2f0c7e41aa.
func NewDiscountRequestID() string { return newID("DISC-") }

// NewReturnID returns a return request id like RET-61d0a2f49c03.
func NewReturnID() string { return newID("RET-") }
