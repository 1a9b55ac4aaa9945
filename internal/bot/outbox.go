package bot

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/bistrobot/internal/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after outbox stop.
	ErrQueueClosed = errors.New("telegram outbox: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram outbox: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// OutboxOptions controls the behaviour of the outbound queue.
type OutboxOptions struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

type outJob struct {
	ctx    context.Context
	action string
	run    func() error
}

// Outbox executes outbound Telegram calls asynchronously with retries, so a
// slow API never blocks update handling.
type Outbox struct {
	opts OutboxOptions
	jobs chan outJob
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewOutbox starts an outbox with sane defaults if options are zeroed.
func NewOutbox(opts OutboxOptions) *Outbox {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	o := &Outbox{
		opts: opts,
		jobs: make(chan outJob, opts.QueueSize),
		stop: make(chan struct{}),
	}

	o.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go o.worker()
	}

	return o
}

// Enqueue schedules the provided function for asynchronous execution.
// The run closure must be idempotent if retries are desired.
func (o *Outbox) Enqueue(ctx context.Context, action string, run func() error) error {
	if run == nil {
		return errors.New("telegram outbox: nil run function")
	}
	select {
	case <-o.stop:
		return ErrQueueClosed
	default:
	}

	select {
	case o.jobs <- outJob{ctx: ctx, action: action, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of failed jobs.
func (o *Outbox) ErrorCount() uint64 {
	return o.errs.Load()
}

// Close stops workers and waits for them to finish processing queued jobs.
// The jobs channel is never closed: a handler racing shutdown can still
// enqueue safely, it just loses the delivery.
func (o *Outbox) Close() {
	o.once.Do(func() {
		close(o.stop)
		o.wg.Wait()
	})
}

func (o *Outbox) worker() {
	defer o.wg.Done()
	for {
		select {
		case j := <-o.jobs:
			o.handleJob(j)
		case <-o.stop:
			o.drain()
			return
		}
	}
}

// drain processes whatever was accepted before the stop signal.
func (o *Outbox) drain() {
	for {
		select {
		case j := <-o.jobs:
			o.handleJob(j)
		default:
			return
		}
	}
}

func (o *Outbox) handleJob(j outJob) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, o.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := o.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadlineCtx.Err(); err != nil {
			lastErr = err
			break
		}

		if err := j.run(); err != nil {
			lastErr = err
			if !retryableSend(err) || attempt == attempts {
				break
			}

			delay := o.opts.RetryBackoff * time.Duration(attempt)
			timer := time.NewTimer(delay)
			select {
			case <-deadlineCtx.Done():
				timer.Stop()
				lastErr = deadlineCtx.Err()
			case <-timer.C:
				logger.Debug(ctx, "tg.outbox", "send.retry",
					append(outboxAttrs(ctx, j), slog.Int("attempt", attempt))...)
				continue
			}
			break
		}

		if attempt > 1 {
			logger.Info(ctx, "tg.outbox", "send.retry.success",
				append(outboxAttrs(ctx, j),
					slog.Int("attempt", attempt),
					slog.Duration("duration", logger.RoundMS(time.Since(start))),
				)...)
		}
		return
	}

	if lastErr != nil {
		o.errs.Add(1)
		logger.Error(ctx, "tg.outbox", "send.fail",
			append(outboxAttrs(ctx, j),
				slog.String("err", redactToken(lastErr)),
				slog.Int("attempt", attempts),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)...)
	}
}

// retryableSend treats transient network errors and Telegram flood waits as
// retryable; everything else fails the job immediately.
func retryableSend(err error) bool {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return true
	}
	return shouldRetry(err)
}

func outboxAttrs(ctx context.Context, j outJob) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if userID := logger.UserIDFrom(ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	return attrs
}

// redactToken strips Telegram bot tokens from error text before logging.
func redactToken(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
