package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests that sensitive keys are sanitized.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "subscription key header", key: "Ocp-Apim-Subscription-Key", value: "abc-123", wantMask: true},
		{name: "subscription_key attribute", key: "subscription_key", value: "abc-123", wantMask: true},
		{name: "azure_key attribute", key: "azure_key", value: "abc-123", wantMask: true},
		{name: "bare key attribute", key: "key", value: "abc-123", wantMask: true},
		{name: "authorization", key: "authorization", value: "Bearer xyz", wantMask: true},
		{name: "token substring", key: "sas_token", value: "sv=2024", wantMask: true},
		{name: "endpoint is kept", key: "endpoint", value: "https://example.cognitiveservices.azure.com", wantMask: false},
		{name: "page is kept", key: "page", value: "12", wantMask: false},
		{name: "key substring is kept", key: "page_keyframe", value: "first", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()
			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, got: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected mask value in output, got: %s", output)
				}
			} else if !strings.Contains(output, tt.value) {
				t.Errorf("expected value %q in output, got: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesSensitivePatterns tests value-based detection.
func TestSecureHandler_SanitizesSensitivePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		wantMask bool
	}{
		{name: "32 hex character key", value: "0123456789abcdef0123456789abcdef", wantMask: true},
		{name: "bearer token", value: "Bearer abc.def", wantMask: true},
		{name: "basic auth", value: "Basic dXNlcjpwYXNz", wantMask: true},
		{name: "signed url", value: "https://example.blob.core.windows.net/r?sv=1&sig=abcd", wantMask: true},
		{name: "file path", value: "/tmp/out/1.json", wantMask: false},
		{name: "short word", value: "tesseract", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewSecureLogger(&buf, true)
			logger.Info("test", "value", tt.value)

			masked := !strings.Contains(buf.String(), tt.value)
			if masked != tt.wantMask {
				t.Errorf("masked = %v, want %v; output: %s", masked, tt.wantMask, buf.String())
			}
		})
	}
}

// TestSecureHandler_LogLevels tests the verbose switch.
func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info and debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		out := buf.String()
		if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
			t.Errorf("expected only warnings, got: %s", out)
		}
		if !strings.Contains(out, "warn message") {
			t.Errorf("expected warning in output, got: %s", out)
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("debug message")

		if !strings.Contains(buf.String(), "debug message") {
			t.Errorf("expected debug message, got: %s", buf.String())
		}
	})
}

// TestSecureHandler_WithAttrsAndGroup tests sanitization of attached attributes.
func TestSecureHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).
		With("subscription_key", "attached-secret").
		WithGroup("azure")
	logger.Info("request", slog.Group("headers", slog.String("Ocp-Apim-Subscription-Key", "grouped-secret")))

	out := buf.String()
	if strings.Contains(out, "attached-secret") || strings.Contains(out, "grouped-secret") {
		t.Errorf("expected secrets to be masked, got: %s", out)
	}
}

// TestNewSecureJSONLogger tests JSON logger creation.
func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureJSONLogger(&buf, true)
	logger.Info("page done", "page", 3, "key", "secret-value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["key"] != MaskValue {
		t.Errorf("expected key to be masked, got %v", entry["key"])
	}
	if entry["page"] != float64(3) {
		t.Errorf("expected page 3, got %v", entry["page"])
	}
}

// TestNewSecureHandler_NilHandler tests the default handler fallback.
func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if h := NewSecureHandler(nil); h.handler == nil {
		t.Error("expected a fallback handler")
	}
}
