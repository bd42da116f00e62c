package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestProgressBar_Update(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(6, "Initializing...")
	p.SetWriter(buf)

	p.Update(3, "Configuring compatibility...")
	output := buf.String()

	if !strings.Contains(output, "50%") {
		t.Errorf("step 3/6 should show 50%%, got: %q", output)
	}
	if !strings.Contains(output, "(3/6)") {
		t.Errorf("expected step counter, got: %q", output)
	}
	if !strings.Contains(output, "Configuring compatibility...") {
		t.Errorf("expected description, got: %q", output)
	}
}

func TestProgressBar_NonTTYEmitsOneLinePerUpdate(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(6, "")
	p.SetWriter(buf)

	steps := []string{"Initializing...", "Creating backup...", "Installing patch files..."}
	for i, step := range steps {
		p.Update(i, step)
	}
	p.Finish()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(steps) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(steps), buf.String())
	}
	for i, step := range steps {
		if !strings.HasSuffix(lines[i], step) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], step)
		}
		if strings.Contains(lines[i], "\r") {
			t.Errorf("line %d contains a carriage return on non-TTY output", i)
		}
	}
}

func TestProgressBar_Clamp(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(6, "")
	p.SetWriter(buf)

	p.Update(10, "over")
	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("over-limit update should clamp to 100%%, got: %q", buf.String())
	}

	buf.Reset()
	p.Update(-1, "under")
	if !strings.Contains(buf.String(), "  0%") {
		t.Errorf("negative update should clamp to 0%%, got: %q", buf.String())
	}
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(0, "")
	p.SetWriter(buf)

	// Must not divide by zero.
	p.Update(0, "nothing to do")
	if !strings.Contains(buf.String(), "0%") {
		t.Errorf("zero total should render 0%%, got: %q", buf.String())
	}
}

func TestProgressBar_Width(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(4, "")
	p.SetWriter(buf)

	p.Update(2, "half")
	want := "[" + strings.Repeat("=", 14) + ">" + strings.Repeat(" ", 15) + "]"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("unexpected bar rendering: %q", buf.String())
	}
}

func TestProgressBar_Concurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress(100, "")
	p.SetWriter(buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.Update(n*10, "concurrent")
		}(i)
	}
	wg.Wait()
}

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Checking running processes")
	s.SetWriter(buf)

	s.Start()
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if got := strings.Count(buf.String(), "Checking running processes..."); got != 1 {
		t.Errorf("message printed %d times, want 1: %q", got, buf.String())
	}
}

func TestSpinner_MultipleStops(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Test")
	s.SetWriter(buf)
	s.Start()

	// Multiple stops should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Working")
	s.SetWriter(buf)
	s.Start()

	s.StopWithMessage("Done!")

	if !strings.Contains(buf.String(), "Done!") {
		t.Errorf("Spinner should contain final message, got: %q", buf.String())
	}
}

func TestSpinner_FormatMessage(t *testing.T) {
	s := NewSpinner("Waiting").WithTimeout(10 * time.Second)
	s.startTime = time.Now()
	if got := s.formatMessage(); !strings.Contains(got, "remaining") {
		t.Errorf("formatMessage() = %q, want remaining time", got)
	}

	s = NewSpinner("Waiting").WithTimeout(0)
	s.startTime = time.Now()
	if got := s.formatMessage(); !strings.Contains(got, "elapsed") {
		t.Errorf("formatMessage() = %q, want elapsed time", got)
	}

	s = NewSpinner("Waiting")
	if got := s.formatMessage(); got != "Waiting" {
		t.Errorf("formatMessage() = %q, want plain message", got)
	}
}
