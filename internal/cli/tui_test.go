package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

func testPreview() PreviewModel {
	runner := pipeline.NewRunner(walk.Fixed{{0, 1}, {2, 4}}, quietLogger())
	opts := pipeline.Options{Size: 2, MaxLongAge: 3}
	return NewPreviewModel(context.Background(), runner, opts)
}

// step runs the command returned by Init or Update and feeds its message back.
func step(t *testing.T, m PreviewModel, cmd tea.Cmd) PreviewModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(PreviewModel)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPreviewInit(t *testing.T) {
	m := testPreview()
	if m.View() == "" {
		t.Error("View() before the first run should not be empty")
	}

	m = step(t, m, m.Init())
	if m.Err != nil {
		t.Fatalf("Err = %v", m.Err)
	}
	if m.Result == nil {
		t.Fatal("Result should be set after the first run")
	}
	if m.Opts.Seed == nil || *m.Opts.Seed != m.Result.Seed {
		t.Error("seed should be pinned after a run")
	}
	if !strings.Contains(m.View(), "Heightwalk Preview") {
		t.Error("View() should include the title")
	}
}

func TestPreviewKeys(t *testing.T) {
	m := testPreview()
	m = step(t, m, m.Init())
	seed := *m.Opts.Seed

	next, cmd := m.Update(key("+"))
	m = next.(PreviewModel)
	if m.Opts.Radius != 1 || !m.Busy {
		t.Errorf("after +: radius = %d, busy = %v", m.Opts.Radius, m.Busy)
	}
	m = step(t, m, cmd)
	if m.Busy || *m.Opts.Seed != seed {
		t.Error("blur changes should keep the pinned seed")
	}
	if m.Result.Blurred == nil {
		t.Error("radius 1 should blur")
	}

	next, cmd = m.Update(key("-"))
	m = step(t, next.(PreviewModel), cmd)
	if m.Opts.Radius != 0 {
		t.Errorf("after -: radius = %d", m.Opts.Radius)
	}
	if next, cmd := m.Update(key("-")); cmd != nil || next.(PreviewModel).Opts.Radius != 0 {
		t.Error("radius should not go below zero")
	}

	next, cmd = m.Update(key("d"))
	m = step(t, next.(PreviewModel), cmd)
	if m.Opts.DetailMax == nil || *m.Opts.DetailMax != pipeline.DefaultDetailMax {
		t.Errorf("after d: DetailMax = %v", m.Opts.DetailMax)
	}

	next, cmd = m.Update(key("s"))
	m = step(t, next.(PreviewModel), cmd)
	if !m.Opts.Saturate {
		t.Error("after s: saturate should be on")
	}

	next, _ = m.Update(key("m"))
	if !next.(PreviewModel).Mask {
		t.Error("after m: mask view should be on")
	}

	next, cmd = m.Update(key("r"))
	if next.(PreviewModel).Opts.Seed != nil || cmd == nil {
		t.Error("r should clear the seed and rerun")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestPreviewDropsSupersededRuns(t *testing.T) {
	m := testPreview()
	m = step(t, m, m.Init())

	next, first := m.Update(key("+"))
	m = next.(PreviewModel)
	next, second := m.Update(key("+"))
	m = next.(PreviewModel)
	prev := m.Result

	// The radius 1 run finishes after the radius 2 run was requested.
	stale := first().(previewMsg)
	next, _ = m.Update(stale)
	m = next.(PreviewModel)
	if m.Result != prev || !m.Busy {
		t.Fatalf("superseded result applied: busy = %v", m.Busy)
	}

	m = step(t, m, second)
	if m.Busy || m.Result == prev {
		t.Errorf("latest result not applied: busy = %v", m.Busy)
	}
	if m.Result == stale.result {
		t.Error("superseded result applied after the latest run")
	}
	if m.Opts.Radius != 2 {
		t.Errorf("Opts.Radius = %d, want 2", m.Opts.Radius)
	}
}

func TestPreviewWindowSize(t *testing.T) {
	next, _ := testPreview().Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(PreviewModel)
	if m.Width != 120 || m.Height != 40 {
		t.Errorf("size = %dx%d", m.Width, m.Height)
	}
}

func TestPreviewError(t *testing.T) {
	m := testPreview()
	m.Opts.Radius = -1
	m = step(t, m, m.Init())
	if m.Err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(m.View(), "radius") {
		t.Errorf("View() should show the error, got:\n%s", m.View())
	}
}

func TestRenderASCII(t *testing.T) {
	heights := []byte{
		0, 255,
		128, 1,
	}
	if got := renderASCII(heights, 2, 2, 2, false); got != " @\n= " {
		t.Errorf("renderASCII() = %q", got)
	}
	if got := renderASCII(heights, 2, 2, 2, true); got != " #\n##" {
		t.Errorf("renderASCII(mask) = %q", got)
	}
	if got := renderASCII(heights, 2, 1, 1, false); got != " " {
		t.Errorf("renderASCII(downsampled) = %q", got)
	}
	if got := renderASCII(nil, 2, 2, 2, false); got != "" {
		t.Errorf("renderASCII(short buffer) = %q", got)
	}
}
