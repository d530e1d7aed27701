package stock

import (
	"testing"

	"github.com/google/uuid"
)

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	event := NewStockChanged(uuid.New(), uuid.New(), 7, "INV-3fa85f64b2c1")
	payload, err := event.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.StoreID != event.StoreID || decoded.ProductID != event.ProductID {
		t.Fatalf("ids mangled: %+v", decoded)
	}
	if decoded.Stock != 7 || decoded.SourceID != "INV-3fa85f64b2c1" {
		t.Fatalf("payload mangled: %+v", decoded)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"wrong type", `{"type":"price_changed","store_id":"` + uuid.NewString() + `"}`},
		{"missing store", `{"type":"stock_changed","stock":3}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeEvent([]byte(tc.payload)); err == nil {
				t.Fatalf("expected decode error for %s", tc.name)
			}
		})
	}
}
