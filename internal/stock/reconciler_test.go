package stock

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/internal/billing"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type stubStockSource struct {
	stock map[uuid.UUID]int
	err   error
	calls atomic.Int32
}

func (s *stubStockSource) StockMap(_ context.Context, _ uuid.UUID) (map[uuid.UUID]int, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.stock, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testRules() billing.Rules {
	return billing.Rules{
		ApprovalThreshold:  decimal.NewFromInt(10),
		WalkInCustomerName: "Walk-in Customer",
	}
}

func goldRing(stock int) billing.ProductInfo {
	return billing.ProductInfo{
		ID:             uuid.New(),
		Name:           "Gold Ring",
		Stock:          stock,
		SellingPrice:   decimal.RequireFromString("118"),
		TaxRatePercent: decimal.RequireFromString("18"),
	}
}

func newTestReconciler(t *testing.T, source stockSource, registry *billing.Registry) *Reconciler {
	t.Helper()
	log := testLogger()
	hub, err := NewHub(HubParams{
		Source:  stubRedis{},
		Sink:    stubRedis{},
		Channel: "test:stock",
		Logger:  log,
	})
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	r, err := NewReconciler(ReconcilerParams{
		Hub:      hub,
		Source:   source,
		Registry: registry,
		Logger:   log,
	})
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	return r
}

func TestReconcileTrimsOpenCarts(t *testing.T) {
	t.Parallel()

	registry := billing.NewRegistry()
	storeID := uuid.New()
	ring := goldRing(10)

	cart := registry.Open(context.Background(), storeID, testRules())
	_, err := registry.Update(cart.TabID, func(c billing.Cart) (billing.Cart, error) {
		next, _, err := c.AddItem(ring, 4)
		return next, err
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	// A sale elsewhere leaves only 2 units.
	source := &stubStockSource{stock: map[uuid.UUID]int{ring.ID: 2}}
	rec := newTestReconciler(t, source, registry)

	if err := rec.Reconcile(context.Background(), storeID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	snap, err := registry.Snapshot(cart.TabID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want trimmed to 2", snap.Lines[0].Quantity)
	}

	notices := registry.DrainNotices(cart.TabID)
	if len(notices) != 1 || notices[0].Kind != billing.NoticeStockLimited {
		t.Fatalf("expected queued trim notice, got %+v", notices)
	}
}

func TestReconcileSkipsOtherStores(t *testing.T) {
	t.Parallel()

	registry := billing.NewRegistry()
	ring := goldRing(10)

	cart := registry.Open(context.Background(), uuid.New(), testRules())
	_, err := registry.Update(cart.TabID, func(c billing.Cart) (billing.Cart, error) {
		next, _, err := c.AddItem(ring, 4)
		return next, err
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	source := &stubStockSource{stock: map[uuid.UUID]int{ring.ID: 0}}
	rec := newTestReconciler(t, source, registry)

	if err := rec.Reconcile(context.Background(), uuid.New()); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	snap, _ := registry.Snapshot(cart.TabID)
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 4 {
		t.Fatalf("cart for another store must be untouched, got %+v", snap.Lines)
	}
}

func TestReconcileUntouchedCartGetsNoNotices(t *testing.T) {
	t.Parallel()

	registry := billing.NewRegistry()
	storeID := uuid.New()
	ring := goldRing(10)

	cart := registry.Open(context.Background(), storeID, testRules())
	_, err := registry.Update(cart.TabID, func(c billing.Cart) (billing.Cart, error) {
		next, _, err := c.AddItem(ring, 2)
		return next, err
	})
	if err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	source := &stubStockSource{stock: map[uuid.UUID]int{ring.ID: 10}}
	rec := newTestReconciler(t, source, registry)

	if err := rec.Reconcile(context.Background(), storeID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if notices := registry.DrainNotices(cart.TabID); len(notices) != 0 {
		t.Fatalf("expected no notices, got %+v", notices)
	}
}

func TestRunSkipsMalformedEvents(t *testing.T) {
	t.Parallel()

	registry := billing.NewRegistry()
	source := &stubStockSource{stock: map[uuid.UUID]int{}}
	rec := newTestReconciler(t, source, registry)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = rec.Run(ctx)
		close(done)
	}()

	good := NewStockChanged(uuid.New(), uuid.New(), 3, "")
	payload, err := good.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Subscription happens inside Run, so keep feeding until a valid event
	// gets through.
	waitFor(t, func() bool {
		rec.hub.broadcast([]byte("not json"))
		rec.hub.broadcast(payload)
		return source.calls.Load() >= 1
	})
	cancel()
	<-done
}
