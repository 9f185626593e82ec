package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/mohammad-safakhou/opticqa/config"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupTelemetryWithoutEndpoint(t *testing.T) {
	tel, tracer, err := SetupTelemetry(context.Background(), config.TelemetryConfig{Enabled: true}, TelemetryOptions{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if tel.Enabled() {
		t.Fatalf("expected no exporter without an endpoint")
	}
	if tracer == nil {
		t.Fatalf("expected a usable tracer")
	}
	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	var nilTel *Telemetry
	if err := nilTel.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil shutdown: %v", err)
	}
}

func TestEndSpanRecordsError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)
	_, failed := tracer.Start(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Fatalf("expected unset status on success, got %v", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "boom" {
		t.Fatalf("expected error status, got %+v", spans[1].Status())
	}
	if len(spans[1].Events()) != 1 {
		t.Fatalf("expected the error recorded as an event, got %d events", len(spans[1].Events()))
	}
}
