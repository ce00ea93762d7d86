package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OpenTelemetry meter and tracer providers for the
// process. A zero value is usable and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	deliveries     otelmetric.Int64Counter
	deliveryTime   otelmetric.Float64Histogram
	renderCounter  otelmetric.Int64Counter
}

// New wires the Prometheus metric exporter and, when jaegerEndpoint is set,
// a batching Jaeger span exporter.
func New(serviceName, jaegerEndpoint string) *Observability {
	o := &Observability{}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)

		meter := o.meterProvider.Meter(serviceName)
		o.deliveries, _ = meter.Int64Counter(
			"notifications.delivered",
			otelmetric.WithDescription("Provider calls by channel and outcome"),
		)
		o.deliveryTime, _ = meter.Float64Histogram(
			"notifications.delivery.duration",
			otelmetric.WithDescription("Provider call duration"),
			otelmetric.WithUnit("ms"),
		)
		o.renderCounter, _ = meter.Int64Counter(
			"templates.rendered",
			otelmetric.WithDescription("Template channel payloads rendered"),
		)
	}

	if jaegerEndpoint != "" {
		spanExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			o.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(spanExporter),
				sdktrace.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceName(serviceName),
				)),
			)
			otel.SetTracerProvider(o.tracerProvider)
		}
	}

	o.tracer = otel.Tracer(serviceName)
	return o
}

// StartSpan starts a span on the process tracer. Without a configured
// exporter the global no-op tracer is used.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("wecelebrate-notifier")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordDelivery counts one provider call and its latency.
func (o *Observability) RecordDelivery(ctx context.Context, channel, status string, d time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	)
	if o.deliveries != nil {
		o.deliveries.Add(ctx, 1, attrs)
	}
	if o.deliveryTime != nil {
		o.deliveryTime.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordRender(ctx context.Context, templateType, channel string) {
	if o.renderCounter != nil {
		o.renderCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("template_type", templateType),
			attribute.String("channel", channel),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
