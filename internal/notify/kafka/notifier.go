// Package kafka implements a Notifier that publishes email requests to a
// Kafka topic consumed by an external mailer.
package kafka

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/notify"
)

var _ notify.Notifier = (*Notifier)(nil)

// messageWriter is the subset of *kafka.Writer used by Notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config configures the Kafka notifier.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Notifier publishes one message per email, keyed by recipient so that a
// customer's emails stay ordered within a partition.
type Notifier struct {
	w       messageWriter
	timeout time.Duration
	lg      *zap.Logger
}

// New creates a Notifier with a synchronous kafka.Writer.
func New(cfg Config, lg *zap.Logger) (*Notifier, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  1,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			lg.Sugar().Errorf(msg, args...)
		}),
	}
	return newNotifier(w, cfg.WriteTimeout, lg), nil
}

func newNotifier(w messageWriter, timeout time.Duration, lg *zap.Logger) *Notifier {
	return &Notifier{w: w, timeout: timeout, lg: lg}
}

// SendEmail publishes the email as {"to","subject","body"}.
func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(to),
		Value: encodeEmail(to, subject, body),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "write email message")
	}

	n.lg.Debug("Email message published", zap.String("to", to))
	return nil
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	if err := n.w.Close(); err != nil {
		return errors.Wrap(err, "close kafka writer")
	}
	return nil
}

func encodeEmail(to, subject, body string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("to", func(e *jx.Encoder) { e.Str(to) })
		e.Field("subject", func(e *jx.Encoder) { e.Str(subject) })
		e.Field("body", func(e *jx.Encoder) { e.Str(body) })
	})
	return e.Bytes()
}
