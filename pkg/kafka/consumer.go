package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"InsiderPulse/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type delivery struct {
	km     kafka.Message
	commit committer
}

// Consumer fans messages from one reader per topic into a worker pool.
// Messages of one partition are handled one at a time; failures are retried
// with jittered backoff and then parked on the DLQ topic if configured.
type Consumer struct {
	cfg      ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	dlq      messageWriter
	hook     ConsumerHook

	msgs     chan delivery
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	partMu    sync.Mutex
	partLocks map[string]*sync.Mutex
}

func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := ConsumerConfig{
		GroupID:     "insiderpulse",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    10e3,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Consumer{
		cfg:       cfg,
		log:       log.With(logger.String("component", "kafka_consumer")),
		handlers:  make(map[string]MessageHandler),
		readers:   make(map[string]*kafka.Reader),
		hook:      NoopHook{},
		msgs:      make(chan delivery, cfg.BufferSize),
		partLocks: make(map[string]*sync.Mutex),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	initMetrics()
	return c, nil
}

// RegisterHandler must be called before Start. A second handler for the same topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("handler already registered", logger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start launches readers and workers; they run until Stop or ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	var workers sync.WaitGroup
	for i := 0; i < c.cfg.WorkerCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for d := range c.msgs {
				c.process(ctx, d)
			}
		}()
	}

	var fetchers sync.WaitGroup
	for topic, reader := range c.readers {
		fetchers.Add(1)
		go func(topic string, reader *kafka.Reader) {
			defer fetchers.Done()
			c.fetch(ctx, topic, reader)
		}(topic, reader)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fetchers.Wait()
		close(c.msgs)
		workers.Wait()
	}()

	c.log.Info("kafka consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.Int("topics", len(c.readers)),
	)
	return nil
}

// Stop cancels fetching, drains the workers and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		}

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Error("close reader", logger.String("topic", topic), logger.Error(err))
			}
		}
		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Error("close dlq writer", logger.Error(err))
			}
		}
		c.log.Info("kafka consumer stopped")
	})
	return stopErr
}

func (c *Consumer) fetch(ctx context.Context, topic string, reader *kafka.Reader) {
	for {
		km, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("fetch message", logger.String("topic", topic), logger.Error(err))
			if sleepCtx(ctx, c.cfg.BackoffMin) != nil {
				return
			}
			continue
		}
		select {
		case c.msgs <- delivery{km: km, commit: reader}:
			consumerQueueDepth.WithLabelValues(topic).Set(float64(len(c.msgs)))
		case <-ctx.Done():
			return
		}
	}
}

// process runs the handler with retries and commits once the message is
// either handled or parked on the DLQ. Without a DLQ a failed message stays
// uncommitted and is redelivered after a rebalance.
func (c *Consumer) process(ctx context.Context, d delivery) {
	km := d.km
	handler, ok := c.handlers[km.Topic]
	if !ok {
		return
	}

	pl := c.partitionLock(km.Topic, km.Partition)
	pl.Lock()
	defer pl.Unlock()

	start := time.Now()
	err := c.handleWithRetry(ctx, handler, km)
	consumerLatency.WithLabelValues(km.Topic).Observe(time.Since(start).Seconds())

	commit := err == nil
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			consumerHandled.WithLabelValues(km.Topic, "canceled").Inc()
			return
		}
		consumerHandled.WithLabelValues(km.Topic, "failed").Inc()
		c.log.Error("message handling failed",
			logger.String("topic", km.Topic),
			logger.Int64("offset", km.Offset),
			logger.Error(err),
		)
		commit = c.toDLQ(ctx, km, err)
	} else {
		consumerHandled.WithLabelValues(km.Topic, "ok").Inc()
	}

	if commit && d.commit != nil {
		if cerr := c.commitWithRetry(ctx, d.commit, km, 3); cerr != nil {
			c.log.Error("commit offset", logger.String("topic", km.Topic), logger.Error(cerr))
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, km kafka.Message) (err error) {
	for attempt := 1; ; attempt++ {
		err = c.handleOnce(ctx, handler, km)
		if err == nil {
			return nil
		}
		c.hook.OnError(ctx, km, attempt, err)
		if attempt > c.cfg.RetryMax {
			return err
		}
		if serr := sleepCtx(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)); serr != nil {
			return serr
		}
	}
}

func (c *Consumer) handleOnce(ctx context.Context, handler MessageHandler, km kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	hctx, err := c.hook.BeforeHandle(ctx, km)
	if err != nil {
		return err
	}
	err = handler.Handle(hctx, km.Value)
	c.hook.AfterHandle(hctx, km, err)
	return err
}

func (c *Consumer) toDLQ(ctx context.Context, km kafka.Message, cause error) bool {
	if c.dlq == nil {
		return false
	}
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Topic: c.cfg.DLQTopic,
		Key:   km.Key,
		Value: km.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(km.Topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("write to dlq", logger.String("dlq_topic", c.cfg.DLQTopic), logger.Error(err))
		return false
	}
	consumerDLQ.WithLabelValues(km.Topic).Inc()
	return true
}

func (c *Consumer) commitWithRetry(ctx context.Context, cm committer, km kafka.Message, max int) error {
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = cm.CommitMessages(cctx, km)
		cancel()
		if err == nil {
			return nil
		}
		if serr := sleepCtx(ctx, backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt)); serr != nil {
			return serr
		}
	}
	return err
}

func (c *Consumer) partitionLock(topic string, partition int) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", topic, partition)
	c.partMu.Lock()
	defer c.partMu.Unlock()
	l, ok := c.partLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.partLocks[key] = l
	}
	return l
}

// backoffWithJitter doubles min per attempt up to max and subtracts up to 50% jitter.
func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt < 1 {
		attempt = 1
	}
	exp := max
	if attempt < 32 {
		if d := min << uint(attempt-1); d > 0 && d < max {
			exp = d
		}
	}
	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
