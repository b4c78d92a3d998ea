package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shop_backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int // 前 n 次调用返回错误
	calls    []Event
}

func (s *recordingSender) Send(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, event)
	if len(s.calls) <= s.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestPool(sender Sender, maxRetry int) *WorkerPool {
	pool := NewWorkerPool(sender, 2, 10, maxRetry, metrics.NewMetricsCollector(prometheus.NewRegistry()))
	pool.RetryDelay = time.Millisecond
	return pool
}

func TestWorkerPoolDeliversEvents(t *testing.T) {
	sender := &recordingSender{}
	pool := newTestPool(sender, 3)
	pool.Start()
	defer pool.Stop()

	pool.Notify(context.Background(), Event{Kind: EventOrderPlaced, UserID: "u1"})
	pool.Notify(context.Background(), Event{Kind: EventOrderCancelled, UserID: "u1"})

	assert.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestWorkerPoolRetriesFailedDelivery(t *testing.T) {
	sender := &recordingSender{failures: 2}
	pool := newTestPool(sender, 3)
	pool.Start()
	defer pool.Stop()

	pool.Notify(context.Background(), Event{Kind: EventReturnStatusChanged, UserID: "u2"})

	// 两次失败 + 一次成功
	assert.Eventually(t, func() bool { return sender.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestWorkerPoolGivesUpAfterMaxRetry(t *testing.T) {
	sender := &recordingSender{failures: 100}
	pool := newTestPool(sender, 1)
	pool.Start()
	defer pool.Stop()

	pool.Notify(context.Background(), Event{Kind: EventOrderPlaced, UserID: "u3"})

	assert.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, sender.count())
}

func TestAddTaskDropsWhenQueueFull(t *testing.T) {
	pool := NewWorkerPool(&recordingSender{}, 1, 2, 0, nil)
	// 未启动，队列不会被消费

	assert.True(t, pool.AddTask(Task{Event: Event{Kind: "a"}}))
	assert.True(t, pool.AddTask(Task{Event: Event{Kind: "b"}}))
	assert.False(t, pool.AddTask(Task{Event: Event{Kind: "c"}}))
}
