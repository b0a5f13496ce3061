package observability

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/matzehuels/pulsegrid"

// OTelHooks turns pipeline, cache and HTTP events into OpenTelemetry spans
// and span events. Spans are created on completion with a start time of
// now minus the reported duration.
type OTelHooks struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewOTelHooks exports to OTEL_EXPORTER_OTLP_ENDPOINT over OTLP/HTTP. It
// returns nil, nil when the variable is unset.
func NewOTelHooks(ctx context.Context) (*OTelHooks, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(trimScheme(endpoint))}
	if !strings.HasPrefix(endpoint, "https://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	service := os.Getenv("OTEL_SERVICE_NAME")
	if service == "" {
		service = "pulsegrid"
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(service),
	)
	return NewOTelHooksWithProvider(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)), nil
}

// NewOTelHooksWithProvider uses an existing provider.
func NewOTelHooksWithProvider(tp *sdktrace.TracerProvider) *OTelHooks {
	return &OTelHooks{provider: tp, tracer: tp.Tracer(tracerName)}
}

// Shutdown flushes pending spans.
func (h *OTelHooks) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.provider.Shutdown(ctx)
}

func trimScheme(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return strings.TrimPrefix(endpoint, "http://")
}

// record emits a finished span covering duration.
func (h *OTelHooks) record(ctx context.Context, name string, duration time.Duration, err error, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, name,
		oteltrace.WithTimestamp(end.Add(-duration)),
		oteltrace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(oteltrace.WithTimestamp(end))
}

// event attaches an event to the span active in ctx, if any.
func event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	oteltrace.SpanFromContext(ctx).AddEvent(name, oteltrace.WithAttributes(attrs...))
}

func (h *OTelHooks) OnLayoutStart(context.Context, string) {}

func (h *OTelHooks) OnLayoutComplete(ctx context.Context, diagram string, stats LayoutStats, d time.Duration, err error) {
	h.record(ctx, "pulsegrid.layout", d, err,
		attribute.String("diagram", diagram),
		attribute.Int("layout.nodes", stats.Nodes),
		attribute.Int("layout.bindings", stats.Bindings),
		attribute.Int("layout.cycles", stats.Cycles),
		attribute.Int("layout.settle_rounds", stats.SettleRounds),
	)
}

func (h *OTelHooks) OnCycle(ctx context.Context, diagram, axis string, entities int) {
	h.record(ctx, "pulsegrid.cycle", 0, nil,
		attribute.String("diagram", diagram),
		attribute.String("axis", axis),
		attribute.Int("entities", entities),
	)
}

func (h *OTelHooks) OnRenderStart(context.Context, []string) {}

func (h *OTelHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.record(ctx, "pulsegrid.render", d, err, attribute.StringSlice("formats", formats))
}

func (h *OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	event(ctx, "cache.hit", attribute.String("key_type", keyType))
}

func (h *OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	event(ctx, "cache.miss", attribute.String("key_type", keyType))
}

func (h *OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	event(ctx, "cache.set", attribute.String("key_type", keyType), attribute.Int("size", size))
}

func (h *OTelHooks) OnRequest(context.Context, string, string) {}

func (h *OTelHooks) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	var err error
	if status >= 500 {
		err = httpError(status)
	}
	h.record(ctx, method+" "+route, d, err,
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
}

type httpError int

func (e httpError) Error() string { return "server error " + strconv.Itoa(int(e)) }
