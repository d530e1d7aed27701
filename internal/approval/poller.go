package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type statusReader interface {
	Status(ctx context.Context, id string) (enums.ApprovalStatus, error)
}

// Poller watches one discount request until a manager decides it. Each
// observed status is pushed through apply, so the tab always reflects the
// latest decision; the loop exits on a terminal status or when the tab's
// context is cancelled.
type Poller struct {
	reader    statusReader
	log       *logger.Logger
	requestID string
	interval  time.Duration
	apply     func(status enums.ApprovalStatus)
}

// PollerParams configure a Poller.
type PollerParams struct {
	Reader    statusReader
	Logger    *logger.Logger
	RequestID string
	Interval  time.Duration
	Apply     func(status enums.ApprovalStatus)
}

// NewPoller builds a poller for a single discount request.
func NewPoller(params PollerParams) (*Poller, error) {
	if params.Reader == nil {
		return nil, fmt.Errorf("status reader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.RequestID == "" {
		return nil, fmt.Errorf("request id required")
	}
	if params.Apply == nil {
		return nil, fmt.Errorf("apply callback required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Poller{
		reader:    params.Reader,
		log:       params.Logger,
		requestID: params.RequestID,
		interval:  interval,
		apply:     params.Apply,
	}, nil
}

// Run polls until the request reaches a terminal status or ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	if p.check(ctx) {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.check(ctx) {
				return
			}
		}
	}
}

// check reads the request status once and reports whether polling is done.
func (p *Poller) check(ctx context.Context) bool {
	status, err := p.reader.Status(ctx, p.requestID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			p.log.Warn(ctx, fmt.Sprintf("discount request %s vanished, stopping poll", p.requestID))
			return true
		}
		p.log.Error(ctx, fmt.Sprintf("poll discount request %s", p.requestID), err)
		return false
	}

	p.apply(status)
	return status.IsTerminal()
}
