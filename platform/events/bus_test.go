package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishRunsHandlersAsync(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	var calls atomic.Int32
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		calls.Add(1)
		return nil
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("boom")
	}))

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected 1 successful handler call, got %d", calls.Load())
	}
}

func TestPublishDetachesCancellation(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	seen := make(chan error, 1)
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		time.Sleep(10 * time.Millisecond)
		seen <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if err := <-seen; err != nil {
		t.Fatalf("expected handler context to survive cancellation, got %v", err)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()
}

func TestWaitCoversHandlersFromConcurrentPublishers(t *testing.T) {
	var bus Bus = NewInMemoryBus(logger.New("development"))
	var calls atomic.Int32
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, event Event) error {
		time.Sleep(time.Millisecond)
		calls.Add(1)
		return errors.New("delivery failed")
	}))

	done := make(chan struct{})
	for range 10 {
		go func() {
			bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
			done <- struct{}{}
		}()
	}
	for range 10 {
		<-done
	}
	bus.Wait()

	if calls.Load() != 10 {
		t.Fatalf("expected 10 handler calls, got %d", calls.Load())
	}
}
