package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriterCountsBytes(t *testing.T) {
	var dest, display bytes.Buffer
	pw := NewWriter(&dest, 100, &display)

	n, err := pw.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Write returned %d, want 5", n)
	}
	if dest.String() != "hello" {
		t.Errorf("dest = %q, want hello", dest.String())
	}
	if pw.written != 5 {
		t.Errorf("written = %d, want 5", pw.written)
	}
}

func TestWriterShowsProgress(t *testing.T) {
	var dest, display bytes.Buffer
	pw := NewWriter(&dest, 1000, &display)

	// Backdate start so the initial grace period has passed.
	pw.startTime = time.Now().Add(-1 * time.Second)
	pw.lastPrint = time.Now().Add(-1 * time.Second)

	if _, err := pw.Write(make([]byte, 500)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := display.String()
	if !strings.Contains(out, "%") {
		t.Errorf("expected percentage in progress output, got: %q", out)
	}
	if !strings.Contains(out, "ETA") {
		t.Errorf("expected ETA in progress output, got: %q", out)
	}
}

func TestWriterUnknownTotal(t *testing.T) {
	var dest, display bytes.Buffer
	pw := NewWriter(&dest, 0, &display)

	pw.startTime = time.Now().Add(-1 * time.Second)
	pw.lastPrint = time.Now().Add(-1 * time.Second)

	if _, err := pw.Write(make([]byte, 2048)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	out := display.String()
	if !strings.Contains(out, "Downloaded:") {
		t.Errorf("expected byte count without total, got: %q", out)
	}
	if strings.Contains(out, "ETA") {
		t.Errorf("ETA should not appear without a known total, got: %q", out)
	}
}

func TestFinishClearsLine(t *testing.T) {
	var dest, display bytes.Buffer
	pw := NewWriter(&dest, 10, &display)

	pw.Finish()

	if !strings.HasPrefix(display.String(), "\r") {
		t.Errorf("Finish should return carriage to line start, got: %q", display.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512B"},
		{2048, "2.0KB"},
		{5 * 1024 * 1024, "5.0MB"},
		{3 * 1024 * 1024 * 1024, "3.0GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{-5, "0:00"},
		{59, "0:59"},
		{125, "2:05"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShouldShowProgressOverride(t *testing.T) {
	original := IsTerminalFunc
	defer func() { IsTerminalFunc = original }()

	IsTerminalFunc = func(int) bool { return false }
	if ShouldShowProgress() {
		t.Error("expected no progress for non-terminal stdout")
	}

	IsTerminalFunc = func(int) bool { return true }
	if !ShouldShowProgress() {
		t.Error("expected progress for terminal stdout")
	}
}
