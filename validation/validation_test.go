package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/capdag/errors"
)

type engineSection struct {
	Mode    string `mapstructure:"mode" validate:"oneof=sequential parallel"`
	Workers int    `mapstructure:"workers" validate:"gte=0"`
}

type sampleConfig struct {
	Name       string        `mapstructure:"name" validate:"required"`
	SampleRate float64       `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Engine     engineSection `mapstructure:"engine"`
}

func TestValidate_Valid(t *testing.T) {
	cfg := sampleConfig{Name: "svc", SampleRate: 0.5, Engine: engineSection{Mode: "parallel", Workers: 4}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsFields(t *testing.T) {
	cfg := sampleConfig{SampleRate: 2, Engine: engineSection{Mode: "turbo", Workers: -1}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected []FieldError details, got %T", appErr.Details["fields"])
	}
	if len(fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(fields), fields)
	}
	for _, want := range []string{"name: is required", "engine.mode: must be one of", "engine.workers:", "sample_rate:"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected message to contain %q, got %q", want, appErr.Message)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"PipelineDirs": "pipeline_dirs",
		"Workers":      "workers",
		"name":         "name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
