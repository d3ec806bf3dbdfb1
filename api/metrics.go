package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "taskly-api"
	requestSpanName  = "taskly.http.request"
	requestEventName = "http.request"
	eventDomain      = "taskly"
	metricsKey       = "taskly.metrics"
)

// requestMetrics collects the timings of one request and reports them as a
// log record and a span event with the same attributes.
type requestMetrics struct {
	logger          *log.Logger
	span            trace.Span
	start           time.Time
	method          string
	route           string
	requestID       string
	serviceDuration time.Duration
	itemsReturned   int
	errorStage      string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, method, route string) (*requestMetrics, context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, requestSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		),
	)
	return &requestMetrics{
		logger: logger,
		span:   span,
		start:  time.Now(),
		method: method,
		route:  route,
	}, ctx
}

// metricsFrom returns the collector installed by Observe, or nil.
func metricsFrom(c echo.Context) *requestMetrics {
	m, _ := c.Get(metricsKey).(*requestMetrics)
	return m
}

func (m *requestMetrics) ObserveService(duration time.Duration) {
	if m == nil || duration <= 0 {
		return
	}
	m.serviceDuration += duration
}

func (m *requestMetrics) SetItemsReturned(count int) {
	if m == nil {
		return
	}
	if count < 0 {
		count = 0
	}
	m.itemsReturned = count
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if m == nil || stage == "" || m.errorStage != "" {
		return
	}
	m.errorStage = stage
}

func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	severityText, severityNumber := severityForStatus(status, err)
	total := durationToMillis(time.Since(m.start))

	attrs := map[string]any{
		"http.method":           m.method,
		"http.route":            m.route,
		"http.status_code":      status,
		"taskly.total_ms":       total,
		"taskly.items_returned": m.itemsReturned,
	}
	if m.requestID != "" {
		attrs["http.request_id"] = m.requestID
	}
	if m.serviceDuration > 0 {
		attrs["taskly.service_ms"] = durationToMillis(m.serviceDuration)
	}
	if m.errorStage != "" {
		attrs["taskly.error_stage"] = m.errorStage
	}

	spanAttrs := []attribute.KeyValue{
		attribute.String("event.name", requestEventName),
		attribute.String("event.domain", eventDomain),
		attribute.String("severity_text", severityText),
		attribute.Int("severity_number", severityNumber),
		attribute.String("http.method", m.method),
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.Float64("taskly.total_ms", total),
		attribute.Int("taskly.items_returned", m.itemsReturned),
	}
	if m.serviceDuration > 0 {
		spanAttrs = append(spanAttrs, attribute.Float64("taskly.service_ms", durationToMillis(m.serviceDuration)))
	}
	if m.errorStage != "" {
		spanAttrs = append(spanAttrs, attribute.String("taskly.error_stage", m.errorStage))
	}
	if err != nil {
		spanAttrs = append(spanAttrs, attribute.String("error.message", err.Error()))
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("taskly.error_stage", m.errorStage),
		)
		m.span.AddEvent("observability.event", trace.WithAttributes(spanAttrs...))
		if status >= http.StatusInternalServerError || (status == 0 && err != nil) {
			desc := http.StatusText(status)
			if err != nil {
				desc = err.Error()
			}
			m.span.SetStatus(codes.Error, desc)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
	}

	if m.logger != nil {
		fields := log.Fields{
			"event.name":      requestEventName,
			"event.domain":    eventDomain,
			"severity_text":   severityText,
			"severity_number": severityNumber,
			"attributes":      attrs,
		}
		if m.span != nil {
			sc := m.span.SpanContext()
			if sc.HasTraceID() {
				fields["trace_id"] = sc.TraceID().String()
			}
			if sc.HasSpanID() {
				fields["span_id"] = sc.SpanID().String()
			}
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		m.logger.WithFields(fields).Info("observability.event")
	}

	if m.span != nil {
		m.span.End()
	}
}

func severityForStatus(status int, err error) (string, int) {
	switch {
	case status >= http.StatusInternalServerError || (status == 0 && err != nil):
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
