package httpclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

const instrumentationName = "github.com/tombee/exa/pkg/httpclient"

// SpanName is the name of the span recorded around every API request.
const SpanName = "exa.request"

// Metric names.
const (
	MetricRequests        = "exa.client.requests"
	MetricRequestDuration = "exa.client.request.duration"
)

type instruments struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) (*instruments, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Exa API requests by method and outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, exaerrors.Wrap(err, "creating request counter")
	}

	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Exa API request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, exaerrors.Wrap(err, "creating duration histogram")
	}

	return &instruments{
		tracer:   tp.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

// start opens the request span.
func (i *instruments) start(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// finish records the outcome on the span and the metrics, then ends the span.
// status is 0 when no response was received.
func (i *instruments) finish(ctx context.Context, span trace.Span, method string, status int, err error, elapsed time.Duration) {
	outcome := "success"
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		outcome = errorType(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("outcome", outcome),
	)
	i.requests.Add(ctx, 1, attrs)
	i.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func errorType(err error) string {
	var classifier exaerrors.ErrorClassifier
	if exaerrors.As(err, &classifier) {
		return classifier.ErrorType()
	}
	return "error"
}
