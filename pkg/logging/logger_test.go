package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/waypoint/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Error().Msg("error message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := testLogger.Context(context.Background())
	ctx = logging.WithRequestID(ctx, "req-42")
	ctx = logging.WithHandler(ctx, "home")
	ctx = logging.WithRoute(ctx, "index")
	ctx = logging.WithPhase(ctx, "dispatch")

	logging.FromContext(ctx).Info().Msg("test message")

	testLogger.AssertContains(t, `"request_id":"req-42"`)
	testLogger.AssertContains(t, `"handler":"home"`)
	testLogger.AssertContains(t, `"route":"index"`)
	testLogger.AssertContains(t, `"phase":"dispatch"`)
	testLogger.AssertContains(t, "test message")

	if got := logging.RequestID(ctx); got != "req-42" {
		t.Errorf("RequestID() = %q, want %q", got, "req-42")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	if logging.FromContext(nil) != logging.Default() {
		t.Error("nil context should yield the default logger")
	}
	if logging.FromContext(context.Background()) != logging.Default() {
		t.Error("empty context should yield the default logger")
	}
	if logging.RequestID(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
}

func TestWithErrorIgnoresNil(t *testing.T) {
	ctx := context.Background()
	if logging.WithError(ctx, nil) != ctx {
		t.Error("WithError(nil) should return the context unchanged")
	}
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := testLogger.Context(context.Background())
	ctx = logging.WithFields(ctx, map[string]any{
		"status":  404,
		"matched": false,
	})
	logging.FromContext(ctx).Warn().Msg("miss")

	if !testLogger.Contains(`"status":404`, `"matched":false`) {
		t.Errorf("expected structured fields, got %s", testLogger.Output())
	}
}

func TestWithFieldReplacesExistingKey(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := testLogger.Context(context.Background())
	ctx = logging.WithPhase(ctx, "dispatch")
	ctx = logging.WithHandler(ctx, "home")
	ctx = logging.WithRequestID(ctx, "req-1")
	ctx = logging.WithPhase(ctx, "dispatch.error")
	ctx = logging.WithHandler(ctx, "home")
	logging.FromContext(ctx).Error().Msg("failed")

	out := testLogger.Output()
	if n := strings.Count(out, `"phase"`); n != 1 {
		t.Errorf("phase appears %d times in %s", n, out)
	}
	if n := strings.Count(out, `"handler"`); n != 1 {
		t.Errorf("handler appears %d times in %s", n, out)
	}
	if !testLogger.Contains(`"phase":"dispatch.error"`, `"request_id":"req-1"`) {
		t.Errorf("expected latest phase and request id, got %s", out)
	}
}

func TestWithLoggerResetsFields(t *testing.T) {
	first := logging.NewTestLogger(t)
	ctx := logging.WithPhase(first.Context(context.Background()), "route")

	second := logging.NewTestLogger(t)
	ctx = logging.WithHandler(second.Context(ctx), "home")
	logging.FromContext(ctx).Info().Msg("switched")

	if first.Count() != 0 {
		t.Errorf("first logger should be unused, got %s", first.Output())
	}
	if second.Contains(`"phase"`) {
		t.Errorf("fields from the replaced logger leaked: %s", second.Output())
	}
	second.AssertContains(t, `"handler":"home"`)
}

func TestConfiguration(t *testing.T) {
	configs := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name:   "debug level",
			config: &logging.Config{Level: "debug", Format: "json"},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"level":"debug"`) {
					t.Errorf("Expected debug level in output")
				}
			},
		},
		{
			name:   "error level only",
			config: &logging.Config{Level: "error", Format: "json"},
			check: func(t *testing.T, output string) {
				if strings.Contains(output, `"level":"info"`) {
					t.Errorf("Should not contain info level when set to error")
				}
			},
		},
		{
			name: "default fields",
			config: &logging.Config{
				Level:  "info",
				Format: "json",
				Fields: map[string]any{"service": "waypoint"},
			},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"service":"waypoint"`) {
					t.Errorf("Expected default field in output, got %s", output)
				}
			},
		},
	}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config)
			logger = logger.Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(logging.EnvLevel, "warn")
	t.Setenv(logging.EnvFormat, "json")
	t.Setenv(logging.EnvCaller, "true")

	cfg := logging.ConfigFromEnv()
	if cfg.Level != "warn" || cfg.Format != "json" || !cfg.AddCaller {
		t.Errorf("unexpected config %+v", cfg)
	}

	t.Setenv(logging.EnvLevel, "")
	t.Setenv(logging.EnvDebug, "1")
	if got := logging.ConfigFromEnv().Level; got != "debug" {
		t.Errorf("WAYPOINT_DEBUG level = %q, want debug", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"off":      zerolog.Disabled,
		"disabled": zerolog.Disabled,
		"loud":     zerolog.InfoLevel,
	}
	for name, want := range tests {
		if got := logging.ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCaptureDefault(t *testing.T) {
	tl := logging.CaptureDefault(t)
	logging.Warn().Str("handler", "home").Msg("captured")
	tl.AssertContains(t, `"handler":"home"`)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Err(nil).Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertContains(t, "message 2")
	tl.AssertNotContains(t, "message 3")
	tl.AssertCount(t, 2)

	tl.Clear()
	if tl.Count() != 0 {
		t.Error("Should have 0 entries after clear")
	}
}
