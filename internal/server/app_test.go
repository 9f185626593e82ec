package server

import (
	"context"
	"testing"

	"github.com/mohammad-safakhou/opticqa/config"
	"github.com/mohammad-safakhou/opticqa/internal/runtime"
)

func TestAppCloseWithoutExporter(t *testing.T) {
	tel, tracer, err := runtime.SetupTelemetry(context.Background(), config.TelemetryConfig{}, runtime.TelemetryOptions{ServiceName: "opticqa-test"})
	if err != nil {
		t.Fatalf("SetupTelemetry: %v", err)
	}
	app := &App{Config: &config.Config{}, Telemetry: tel, Tracer: tracer}
	if p := app.NewPipeline(nil); p == nil {
		t.Fatalf("expected a pipeline")
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var nilApp *App
	if err := nilApp.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
