// Package scheduler runs the periodic sweep that notifies technicians about
// work orders coming due.
package scheduler

import (
	"context"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/logs"
	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/queue"
)

// DueOrderSource is the query surface the sweep needs; implemented by
// repository.WorkOrderRepo.
type DueOrderSource interface {
	FindDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]model.DueWorkOrder, error)
}

// Publisher delivers one event per due work order; implemented by the
// queue_publisher package.
type Publisher func(ctx context.Context, event queue.WorkOrderDueEvent) error

// DueWorkOrderSweep periodically scans for work orders due within the
// configured window and publishes a notification event per order.
type DueWorkOrderSweep struct {
	Orders   DueOrderSource
	Publish  Publisher
	Window   time.Duration
	Interval time.Duration
	now      func() time.Time
}

// NewDueWorkOrderSweep builds a sweep with the given window and interval.
func NewDueWorkOrderSweep(orders DueOrderSource, publish Publisher, window, interval time.Duration) *DueWorkOrderSweep {
	return &DueWorkOrderSweep{
		Orders:   orders,
		Publish:  publish,
		Window:   window,
		Interval: interval,
		now:      time.Now,
	}
}

// Run executes the sweep on its interval until the context is cancelled.
// The first sweep runs immediately so a restart never silently skips a
// notification window.
func (s *DueWorkOrderSweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep queries and publishes once. Publish failures are logged per order
// and do not stop the remaining notifications.
func (s *DueWorkOrderSweep) sweep(ctx context.Context) {
	now := s.now().UTC()
	due, err := s.Orders.FindDueWithin(ctx, now, s.Window)
	if err != nil {
		logs.Logger.Errorf("due-sweep: query failed: %v", err)
		return
	}
	sent := 0
	for _, d := range due {
		ev := queue.WorkOrderDueEvent{
			WorkOrderID:     d.ID,
			CustomerOwnerID: d.CustomerOwnerID,
			TechnicianID:    d.TechnicianID,
			TechnicianEmail: d.TechnicianEmail,
			MooringID:       d.MooringID,
			MooringSerial:   d.MooringSerial,
			Problem:         d.Problem,
			DueDate:         d.DueDate.Format("2006-01-02"),
		}
		if err := s.Publish(ctx, ev); err != nil {
			logs.Logger.Errorf("due-sweep: publish work order %d failed: %v", d.ID, err)
			continue
		}
		sent++
	}
	if len(due) > 0 {
		logs.Logger.Infof("due-sweep: %d work orders due within %s, %d notifications published", len(due), s.Window, sent)
	}
}
