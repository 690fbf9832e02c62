package kafka

import (
	"context"

	"InsiderPulse/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook observes message handling. A non-nil error from BeforeHandle
// skips the handler and sends the message down the failure path.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, km kafka.Message) (context.Context, error)
	AfterHandle(ctx context.Context, km kafka.Message, err error)
	OnError(ctx context.Context, km kafka.Message, attempt int, err error)
}

type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ kafka.Message) (context.Context, error) {
	return ctx, nil
}

func (NoopHook) AfterHandle(context.Context, kafka.Message, error) {}

func (NoopHook) OnError(context.Context, kafka.Message, int, error) {}

// HookFuncs adapts plain functions; nil members are no-ops.
type HookFuncs struct {
	Before func(context.Context, kafka.Message) (context.Context, error)
	After  func(context.Context, kafka.Message, error)
	Err    func(context.Context, kafka.Message, int, error)
}

func (h HookFuncs) BeforeHandle(ctx context.Context, km kafka.Message) (context.Context, error) {
	if h.Before == nil {
		return ctx, nil
	}
	return h.Before(ctx, km)
}

func (h HookFuncs) AfterHandle(ctx context.Context, km kafka.Message, err error) {
	if h.After != nil {
		h.After(ctx, km, err)
	}
}

func (h HookFuncs) OnError(ctx context.Context, km kafka.Message, attempt int, err error) {
	if h.Err != nil {
		h.Err(ctx, km, attempt, err)
	}
}

// LoggingHook logs every failed attempt.
type LoggingHook struct {
	NoopHook
	Log *logger.Logger
}

func (h LoggingHook) OnError(_ context.Context, km kafka.Message, attempt int, err error) {
	h.Log.Warn("kafka handler attempt failed",
		logger.String("topic", km.Topic),
		logger.Int("partition", km.Partition),
		logger.Int64("offset", km.Offset),
		logger.Int("attempt", attempt),
		logger.Error(err),
	)
}
