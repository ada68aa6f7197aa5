package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/notify"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
)

const instrumentationName = "github.com/xenking/kart-checkout/internal/domain/checkout"

// Checkout outcomes reported in the outcome metric.
const (
	outcomeApproved = "approved"
	outcomeDeclined = "declined"
	outcomeFailed   = "failed"
)

var errNoOrder = errors.New("repository returned no order")

// Option configures a Service.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the tracer provider used for checkout spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider used for checkout metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// Service drives a checkout: it prices the cart, charges the customer,
// persists the order and sends the approval email.
//
// Service holds no per-checkout state and is safe for concurrent use.
type Service struct {
	gateway  payment.Gateway
	orders   order.Repository
	notifier notify.Notifier

	tracer        trace.Tracer
	outcomes      metric.Int64Counter
	notifyFailure metric.Int64Counter
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	gateway payment.Gateway,
	orders order.Repository,
	notifier notify.Notifier,
	opts ...Option,
) (*Service, error) {
	o := options{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)
	outcomes, err := meter.Int64Counter("checkout.orders",
		metric.WithDescription("Checkouts by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create outcome counter")
	}
	notifyFailure, err := meter.Int64Counter("checkout.notify.failures",
		metric.WithDescription("Approval emails that could not be sent"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create notify failure counter")
	}

	return &Service{
		gateway:       gateway,
		orders:        orders,
		notifier:      notifier,
		tracer:        o.tracerProvider.Tracer(instrumentationName),
		outcomes:      outcomes,
		notifyFailure: notifyFailure,
	}, nil
}

// ProcessOrder checks out c using paymentToken.
//
// The cart total (after the tier discount) is charged exactly once. When the
// gateway declines, ProcessOrder returns a nil order and a nil error and
// nothing is persisted or sent. On approval the order returned by the
// repository is returned unmodified; a failure to send the approval email
// does not affect the result. Gateway and repository errors are returned.
func (s *Service) ProcessOrder(ctx context.Context, c cart.Cart, paymentToken string) (_ *order.Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "checkout.ProcessOrder",
		trace.WithAttributes(
			attribute.Int64("user.id", c.User.ID),
			attribute.String("user.tier", c.User.Tier.String()),
			attribute.Int("cart.items", len(c.Items)),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			s.record(ctx, outcomeFailed)
		}
		span.End()
	}()

	total := Total(c)
	span.SetAttributes(attribute.String("checkout.total", total.String()))

	res, err := s.gateway.Charge(ctx, total, paymentToken)
	if err != nil {
		return nil, errors.Wrap(err, "charge payment")
	}
	if !res.Success {
		zctx.From(ctx).Info("Payment declined",
			zap.Int64("user_id", c.User.ID),
			zap.Stringer("total", total),
		)
		s.record(ctx, outcomeDeclined)
		return nil, nil
	}

	o, err := s.orders.Save(ctx, c, total)
	if err != nil {
		return nil, errors.Wrap(err, "save order")
	}
	if o == nil {
		return nil, errors.Wrap(errNoOrder, "save order")
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	if err := s.notifyApproved(ctx, c.User.Email, o.ID, total); err != nil {
		zctx.From(ctx).Warn("Approval email not sent",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		span.AddEvent("notification failed", trace.WithAttributes(attribute.String("error", err.Error())))
		s.notifyFailure.Add(ctx, 1)
	}

	s.record(ctx, outcomeApproved)
	return o, nil
}

// notifyApproved sends the approval email. It is the failure boundary for
// notification: errors and panics from the notifier are returned as an error
// and must not be propagated past ProcessOrder.
func (s *Service) notifyApproved(ctx context.Context, to, orderID string, total decimal.Decimal) (rerr error) {
	defer func() {
		if r := recover(); r != nil {
			rerr = errors.Errorf("notifier panic: %v", r)
		}
	}()
	if err := s.notifier.SendEmail(ctx, to, ApprovedSubject, ApprovedBody(orderID, total)); err != nil {
		return errors.Wrap(err, "send email")
	}
	return nil
}

func (s *Service) record(ctx context.Context, outcome string) {
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
