package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStdoutLogger_JSONIncludesComponentAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, Options{JSON: true, Component: "server"})
	l.Info("created script", Field{Key: "links", Value: 3})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v (line: %s)", err, buf.String())
	}
	if rec["msg"] != "created script" {
		t.Errorf("expected msg 'created script', got %v", rec["msg"])
	}
	if rec["component"] != "server" {
		t.Errorf("expected component 'server', got %v", rec["component"])
	}
	if rec["links"] != float64(3) {
		t.Errorf("expected links 3, got %v", rec["links"])
	}
}

func TestStdoutLogger_DebugHiddenUnlessVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		want    bool
	}{
		{"verbose shows debug", true, true},
		{"quiet hides debug", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			l := NewLogger(&buf, Options{Verbose: tt.verbose})
			l.Debug("probe")
			if got := strings.Contains(buf.String(), "probe"); got != tt.want {
				t.Errorf("debug visible = %v, want %v (output: %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestStdoutLogger_MasksSensitiveFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, Options{})
	l.Warn("upstream request", Field{Key: "Authorization", Value: "Bearer abc"}, Field{Key: "url", Value: "https://hf-mirror.com/x"})

	out := buf.String()
	if strings.Contains(out, "Bearer abc") {
		t.Errorf("authorization value leaked: %s", out)
	}
	if !strings.Contains(out, MaskValue) {
		t.Errorf("expected mask in output: %s", out)
	}
	if !strings.Contains(out, "https://hf-mirror.com/x") {
		t.Errorf("expected url to be kept: %s", out)
	}
}

func TestStdoutLogger_ErrorValuesRenderMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, Options{JSON: true})
	l.Error("fetch failed", Field{Key: "error", Value: errors.New("connection refused")})

	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected error text in output: %s", buf.String())
	}
}

func TestStdoutLogger_WithKeepsPersistentFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, Options{}).With(Field{Key: "backend", Value: "nethttp"})
	l.Info("hello")

	if !strings.Contains(buf.String(), "backend=nethttp") {
		t.Errorf("expected persistent field in output: %s", buf.String())
	}
}
