package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/queue"
)

type fakeOrderSource struct {
	due []model.DueWorkOrder
	err error

	gotNow    time.Time
	gotWindow time.Duration
}

func (f *fakeOrderSource) FindDueWithin(_ context.Context, now time.Time, window time.Duration) ([]model.DueWorkOrder, error) {
	f.gotNow = now
	f.gotWindow = window
	return f.due, f.err
}

func dueOrder(id uint64) model.DueWorkOrder {
	return model.DueWorkOrder{
		WorkOrder: model.WorkOrder{
			ID:              id,
			CustomerOwnerID: 10,
			MooringID:       7,
			TechnicianID:    20,
			DueDate:         time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			Status:          model.WorkOrderStatusNew,
			Problem:         "chain wear",
		},
		TechnicianEmail: "tech@marina.test",
		MooringSerial:   "M-0007",
	}
}

func TestSweepPublishesOneEventPerDueOrder(t *testing.T) {
	source := &fakeOrderSource{due: []model.DueWorkOrder{dueOrder(1), dueOrder(2)}}
	var published []queue.WorkOrderDueEvent
	sweep := NewDueWorkOrderSweep(source, func(_ context.Context, ev queue.WorkOrderDueEvent) error {
		published = append(published, ev)
		return nil
	}, 72*time.Hour, time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sweep.now = func() time.Time { return now }

	sweep.sweep(context.Background())

	if source.gotWindow != 72*time.Hour {
		t.Errorf("window = %v, want 72h", source.gotWindow)
	}
	if !source.gotNow.Equal(now) {
		t.Errorf("now = %v, want %v", source.gotNow, now)
	}
	if len(published) != 2 {
		t.Fatalf("published %d events, want 2", len(published))
	}
	ev := published[0]
	if ev.WorkOrderID != 1 || ev.TechnicianEmail != "tech@marina.test" || ev.MooringSerial != "M-0007" {
		t.Errorf("event = %+v", ev)
	}
	if ev.DueDate != "2026-03-03" {
		t.Errorf("due date = %q, want 2026-03-03", ev.DueDate)
	}
}

func TestSweepContinuesPastPublishFailure(t *testing.T) {
	source := &fakeOrderSource{due: []model.DueWorkOrder{dueOrder(1), dueOrder(2), dueOrder(3)}}
	var published []uint64
	sweep := NewDueWorkOrderSweep(source, func(_ context.Context, ev queue.WorkOrderDueEvent) error {
		if ev.WorkOrderID == 2 {
			return errors.New("broker unavailable")
		}
		published = append(published, ev.WorkOrderID)
		return nil
	}, 72*time.Hour, time.Hour)

	sweep.sweep(context.Background())

	if len(published) != 2 || published[0] != 1 || published[1] != 3 {
		t.Errorf("published = %v, want [1 3]", published)
	}
}

func TestSweepSkipsPublishOnQueryError(t *testing.T) {
	source := &fakeOrderSource{err: errors.New("db down")}
	calls := 0
	sweep := NewDueWorkOrderSweep(source, func(context.Context, queue.WorkOrderDueEvent) error {
		calls++
		return nil
	}, 72*time.Hour, time.Hour)

	sweep.sweep(context.Background())

	if calls != 0 {
		t.Errorf("publish called %d times, want 0", calls)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	source := &fakeOrderSource{}
	sweep := NewDueWorkOrderSweep(source, func(context.Context, queue.WorkOrderDueEvent) error {
		return nil
	}, time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweep.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
