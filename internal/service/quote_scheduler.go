package service

import (
	"context"
	"sync"
	"time"

	"github.com/freshcart-next/internal/models"
)

type scheduledQuote struct {
	timer *time.Timer
	gen   uint64
}

// QuoteScheduler 报价防抖调度器
// 同一键上的新任务取消尚未触发的旧任务；已触发但被新任务
// 取代的执行在代际校验处丢弃，保证只有最新任务产出结果。
type QuoteScheduler struct {
	delay time.Duration
	run   func(ctx context.Context, addr models.ShippingAddress)

	mu      sync.Mutex
	pending map[string]*scheduledQuote
	gen     uint64
	stopped bool
}

// NewQuoteScheduler 创建防抖调度器
func NewQuoteScheduler(delay time.Duration, run func(ctx context.Context, addr models.ShippingAddress)) *QuoteScheduler {
	return &QuoteScheduler{
		delay:   delay,
		run:     run,
		pending: make(map[string]*scheduledQuote),
	}
}

// Schedule 登记一次延迟执行，取消同键的挂起任务
func (q *QuoteScheduler) Schedule(key string, addr models.ShippingAddress) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}

	if prev, ok := q.pending[key]; ok {
		prev.timer.Stop()
	}

	q.gen++
	gen := q.gen
	entry := &scheduledQuote{gen: gen}
	entry.timer = time.AfterFunc(q.delay, func() {
		q.fire(key, gen, addr)
	})
	q.pending[key] = entry
}

// Cancel 取消指定键的挂起任务
func (q *QuoteScheduler) Cancel(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if prev, ok := q.pending[key]; ok {
		prev.timer.Stop()
		delete(q.pending, key)
	}
}

// Stop 取消全部挂起任务并拒绝后续登记
func (q *QuoteScheduler) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	for key, entry := range q.pending {
		entry.timer.Stop()
		delete(q.pending, key)
	}
}

func (q *QuoteScheduler) fire(key string, gen uint64, addr models.ShippingAddress) {
	q.mu.Lock()
	cur, ok := q.pending[key]
	if !ok || cur.gen != gen || q.stopped {
		q.mu.Unlock()
		return
	}
	delete(q.pending, key)
	q.mu.Unlock()

	q.run(context.Background(), addr)
}
