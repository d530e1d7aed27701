package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/aurumworks/jewelpos-backend/internal/billing"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	"github.com/aurumworks/jewelpos-backend/pkg/metrics"
)

type stockSource interface {
	StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
}

// Reconciler trims open carts whenever the stock feed reports a change. The
// event is only a wake-up: the reconciler reloads the full stock map for the
// store and applies it, so stale or coalesced events still converge on the
// truth.
type Reconciler struct {
	hub      *Hub
	source   stockSource
	registry *billing.Registry
	log      *logger.Logger
	metrics  *metrics.BillingMetrics
}

// ReconcilerParams configure a Reconciler.
type ReconcilerParams struct {
	Hub      *Hub
	Source   stockSource
	Registry *billing.Registry
	Logger   *logger.Logger
	Metrics  *metrics.BillingMetrics
}

// NewReconciler builds the cart stock reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
	if params.Hub == nil {
		return nil, fmt.Errorf("stock hub required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("stock source required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("tab registry required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Reconciler{
		hub:      params.Hub,
		source:   params.Source,
		registry: params.Registry,
		log:      params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Run consumes the stock feed until ctx is cancelled. Malformed payloads are
// logged and skipped; a failed reconcile pass leaves carts as they were
// until the next event.
func (r *Reconciler) Run(ctx context.Context) error {
	events, cancel := r.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			event, err := DecodeEvent(payload)
			if err != nil {
				r.log.Warn(ctx, fmt.Sprintf("skipping malformed stock event: %v", err))
				continue
			}
			if err := r.Reconcile(ctx, event.StoreID); err != nil {
				r.log.Error(ctx, "stock reconcile pass failed", err)
			}
		}
	}
}

// Reconcile reloads the store's stock map and trims every open tab for that
// store against it. Per-tab failures are collected so one bad tab does not
// shield the rest from trimming.
func (r *Reconciler) Reconcile(ctx context.Context, storeID uuid.UUID) error {
	stockMap, err := r.source.StockMap(ctx, storeID)
	if err != nil {
		return fmt.Errorf("load stock map: %w", err)
	}
	r.metrics.IncReconcileRun()

	var errs error
	trims := 0
	for _, tabID := range r.registry.TabIDs() {
		snapshot, err := r.registry.Snapshot(tabID)
		if err != nil {
			// Tab closed between listing and snapshot.
			continue
		}
		if snapshot.StoreID != storeID {
			continue
		}

		var notices []billing.Notice
		_, err = r.registry.Update(tabID, func(c billing.Cart) (billing.Cart, error) {
			next, changeNotices, changed := c.Reconcile(stockMap)
			if !changed {
				return c, nil
			}
			notices = changeNotices
			return next, nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tab %s: %w", tabID, err))
			continue
		}
		if len(notices) > 0 {
			trims += len(notices)
			r.registry.PushNotices(tabID, notices...)
			r.log.Info(r.log.WithTabID(ctx, tabID.String()),
				fmt.Sprintf("cart trimmed by stock reconcile, %d lines affected", len(notices)))
		}
	}

	r.metrics.AddReconcileTrims(trims)
	return errs
}
