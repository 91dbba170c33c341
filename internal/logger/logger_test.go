package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestVerboseGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("also hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output with verbose off, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] shown 2") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
	SetVerbose(false)
}

func TestWarnAlwaysPrints(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Warn("bad artifact %s", "x.json")
	if !strings.Contains(buf.String(), "[WARN] bad artifact x.json") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}
