package worker

import (
	"context"
	"sync"
	"time"

	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"

	"go.uber.org/zap"
)

// 通知类型
const (
	EventOrderPlaced         = "order_placed"
	EventOrderCancelled      = "order_cancelled"
	EventOrderStatusChanged  = "order_status_changed"
	EventReturnStatusChanged = "return_status_changed"
)

// Event 业务通知事件，具体渲染交给 Sender (邮件模板等)
type Event struct {
	Kind     string            `json:"kind"`
	UserID   string            `json:"userId"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// Notifier 业务层只依赖该接口
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Sender 实际投递通知 (邮件、短信、推送)
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// LogSender 仅记录日志的 Sender，邮件服务接入前使用
type LogSender struct{}

func (LogSender) Send(ctx context.Context, event Event) error {
	logger.Log.Info("notification",
		zap.String("kind", event.Kind),
		zap.String("user_id", event.UserID),
		zap.String("template", event.Template),
		zap.Any("data", event.Data),
	)
	return nil
}

type Task struct {
	Event Event
	Retry int // 重试次数
}

type WorkerPool struct {
	TaskQueue  chan Task
	RetryQueue chan Task // 重试队列
	Sender     Sender
	WorkerNum  int
	MaxRetry   int           // 最大重试次数
	RetryDelay time.Duration // 第 n 次重试前等待 n*RetryDelay

	metrics *metrics.MetricsCollector
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewWorkerPool(sender Sender, workerNum, bufferSize, maxRetry int, collector *metrics.MetricsCollector) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:  make(chan Task, bufferSize),
		RetryQueue: make(chan Task, bufferSize/2),
		Sender:     sender,
		WorkerNum:  workerNum,
		MaxRetry:   maxRetry,
		RetryDelay: time.Second,
		metrics:    collector,
		quit:       make(chan struct{}),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	logger.Log.Info("worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止所有协程，队列中未处理的任务会被丢弃
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.wg.Wait()
		if pending := len(p.TaskQueue) + len(p.RetryQueue); pending > 0 {
			logger.Log.Warn("worker pool stopped with pending tasks", zap.Int("pending", pending))
		}
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.TaskQueue:
			p.handle(id, task)
		}
	}
}

func (p *WorkerPool) handle(id int, task Task) {
	err := p.Sender.Send(context.Background(), task.Event)
	if p.metrics != nil {
		p.metrics.RecordNotification(task.Event.Kind, err)
	}
	if err == nil {
		return
	}

	logger.Log.Warn("notification failed",
		zap.Int("worker", id),
		zap.String("kind", task.Event.Kind),
		zap.String("user_id", task.Event.UserID),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry >= p.MaxRetry {
		p.logFailedTask(task, err)
		return
	}
	task.Retry++
	select {
	case p.RetryQueue <- task:
	default:
		p.logFailedTask(task, err)
	}
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(task.Retry) * p.RetryDelay)
			select {
			case <-p.quit:
				timer.Stop()
				return
			case <-timer.C:
			}

			select {
			case p.TaskQueue <- task:
			default:
				p.logFailedTask(task, nil)
			}
		}
	}
}

func (p *WorkerPool) logFailedTask(task Task, err error) {
	logger.Log.Error("notification dropped",
		zap.String("kind", task.Event.Kind),
		zap.String("user_id", task.Event.UserID),
		zap.Int("retry", task.Retry),
		zap.Error(err),
	)
}

// AddTask 非阻塞入队，队列满时丢弃
func (p *WorkerPool) AddTask(task Task) bool {
	select {
	case p.TaskQueue <- task:
		return true
	default:
		p.logFailedTask(task, nil)
		return false
	}
}

// Notify 实现 Notifier
func (p *WorkerPool) Notify(ctx context.Context, event Event) {
	p.AddTask(Task{Event: event})
}

var _ Notifier = (*WorkerPool)(nil)
