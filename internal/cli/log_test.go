package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storelink/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("linked") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("linked") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("linked") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug output missing after SetLogLevel: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Install complete")

	out := buf.String()
	if !strings.Contains(out, "Install complete (") {
		t.Errorf("progress output %q should contain message and elapsed time", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("progress output %q should end with a duration", out)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)
	registerHooks(logger)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	observability.Install().OnScan(ctx, "/store", 4, time.Millisecond)
	observability.Install().OnCollect(ctx, "/p/node_modules", 2, 1, nil)
	observability.Install().OnFetchComplete(ctx, 3, time.Second, errors.New("npm exited 1"))
	observability.Install().OnLink(ctx, "/p/node_modules/a", "/store/a@1.0.0", true)
	observability.Cache().OnCacheMiss(ctx, "npm")
	observability.HTTP().OnResponse(ctx, "GET", "registry.npmjs.org", "/a", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"store indexed", "collected", "fetch failed", "linked", "cache miss", "http response"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksSkipExistingLinks(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.DebugLevel)}

	h.OnLink(context.Background(), "/p/node_modules/a", "/store/a@1.0.0", false)
	if buf.Len() != 0 {
		t.Errorf("existing link should not be logged: %q", buf.String())
	}
}
