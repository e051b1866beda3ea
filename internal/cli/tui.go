package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

// ramp maps increasing heights to increasingly dense glyphs.
const ramp = " .:-=+*#%@"

// Preview styles
var (
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewMapStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	previewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// PreviewModel - Interactive heightmap preview
// =============================================================================

// previewMsg delivers the outcome of a pipeline run to the model. run
// identifies the request so results overtaken by a newer run are dropped.
type previewMsg struct {
	run    int
	result *pipeline.Result
	err    error
}

// PreviewModel is the bubbletea model for the interactive preview.
type PreviewModel struct {
	Runner *pipeline.Runner
	Opts   pipeline.Options
	Result *pipeline.Result
	Err    error
	Mask   bool
	Busy   bool
	Width  int
	Height int

	ctx  context.Context
	runs int
}

// NewPreviewModel creates a preview model. The first run starts from Init.
func NewPreviewModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) PreviewModel {
	opts.Formats = []string{pipeline.FormatRaw}
	return PreviewModel{
		Runner: runner,
		Opts:   opts,
		Width:  80,
		Height: 24,
		ctx:    ctx,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return m.run()
}

// run executes the pipeline with the current options off the UI goroutine.
func (m PreviewModel) run() tea.Cmd {
	ctx, runner, opts, run := m.ctx, m.Runner, m.Opts, m.runs
	if ctx == nil {
		ctx = context.Background()
	}
	return func() tea.Msg {
		res, err := runner.Execute(ctx, opts)
		return previewMsg{run: run, result: res, err: err}
	}
}

// rerun marks the model busy and schedules a new run.
func (m PreviewModel) rerun() (tea.Model, tea.Cmd) {
	m.Busy = true
	m.runs++
	return m, m.run()
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		if msg.run != m.runs {
			return m, nil
		}
		m.Busy = false
		m.Err = msg.err
		if msg.err == nil {
			m.Result = msg.result
			// Pin the seed so blur changes keep the same walk.
			s := msg.result.Seed
			m.Opts.Seed = &s
			m.Opts.SeedHex = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.Opts.Seed = nil
			m.Opts.SeedHex = ""
			return m.rerun()
		case "+", "=":
			m.Opts.Radius++
			return m.rerun()
		case "-", "_":
			if m.Opts.Radius > 0 {
				m.Opts.Radius--
				return m.rerun()
			}
		case "d":
			if m.Opts.DetailMax == nil {
				d := pipeline.DefaultDetailMax
				m.Opts.DetailMax = &d
			} else {
				m.Opts.DetailMax = nil
			}
			return m.rerun()
		case "s":
			m.Opts.Saturate = !m.Opts.Saturate
			return m.rerun()
		case "m":
			m.Mask = !m.Mask
		}
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Heightwalk Preview"))
	b.WriteString("  ")
	b.WriteString(previewHelpStyle.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("r reseed  +/- radius  d detail  s saturate  m mask  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.Err != nil:
		b.WriteString(previewErrorStyle.Render(m.Err.Error()))
	case m.Result == nil:
		b.WriteString(previewHelpStyle.Render("growing..."))
	default:
		cols, rows := m.canvas()
		b.WriteString(previewMapStyle.Render(renderASCII(m.Result.Output(), m.Result.Size(), cols, rows, m.Mask)))
	}
	return b.String()
}

func (m PreviewModel) status() string {
	if m.Result == nil {
		return ""
	}
	detail := "off"
	if m.Opts.DetailMax != nil {
		detail = fmt.Sprintf("%d", *m.Opts.DetailMax)
	}
	busy := ""
	if m.Busy {
		busy = " · working"
	}
	return fmt.Sprintf("%s · radius %d · detail %s · saturate %t%s",
		formatStats(m.Result), m.Opts.Radius, detail, m.Opts.Saturate, busy)
}

// canvas returns the character grid available for the map. Terminal cells
// are about twice as tall as wide, so rows are halved.
func (m PreviewModel) canvas() (cols, rows int) {
	size := m.Result.Size()
	cols = max(min(m.Width, size), 1)
	rows = max(min(m.Height-4, cols/2), 1)
	return cols, rows
}

// renderASCII samples a size×size heightmap onto a cols×rows character grid
// with nearest-neighbour lookup.
func renderASCII(heights []byte, size, cols, rows int, mask bool) string {
	if size == 0 || len(heights) < size*size {
		return ""
	}
	var b strings.Builder
	for y := 0; y < rows; y++ {
		sy := y * size / rows
		for x := 0; x < cols; x++ {
			v := heights[sy*size+x*size/cols]
			switch {
			case mask && v != 0:
				b.WriteByte('#')
			case mask:
				b.WriteByte(' ')
			default:
				b.WriteByte(ramp[int(v)*(len(ramp)-1)/255])
			}
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
