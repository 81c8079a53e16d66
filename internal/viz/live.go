package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/miegruneisen/internal/sweep"
)

const (
	barWidth   = 40
	sparkWidth = 50
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)

type TickMsg time.Time

// SampleMsg carries one evaluated volume into the program.
type SampleMsg struct {
	Sample sweep.Sample
	Total  int
}

// DoneMsg ends the sweep, successfully or not.
type DoneMsg struct {
	Result *sweep.Result
	Err    error
}

// LiveModel shows a sweep filling in as samples complete.
type LiveModel struct {
	method  string
	total   int
	done    int
	z, e, f []float64
	last    sweep.Sample
	started time.Time
	elapsed time.Duration
	frame   int

	result   *sweep.Result
	err      error
	finished bool
	quit     bool
}

func NewLiveModel(method string, total int) LiveModel {
	m := LiveModel{
		method:  method,
		total:   total,
		z:       make([]float64, total),
		e:       make([]float64, total),
		f:       make([]float64, total),
		started: time.Now(),
	}
	for i := 0; i < total; i++ {
		m.z[i], m.e[i], m.f[i] = math.NaN(), math.NaN(), math.NaN()
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	case SampleMsg:
		i := msg.Sample.Index
		if i >= 0 && i < m.total {
			if math.IsNaN(m.z[i]) {
				m.done++
			}
			m.z[i], m.e[i], m.f[i] = msg.Sample.Z, msg.Sample.E, msg.Sample.F
			m.last = msg.Sample
		}
	case DoneMsg:
		m.result, m.err = msg.Result, msg.Err
		m.finished = true
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	case TickMsg:
		m.frame++
		m.elapsed = time.Since(m.started)
		return m, tick()
	}
	return m, nil
}

func (m LiveModel) View() string {
	var s strings.Builder

	status := AnimatedSpinner(m.frame) + " running"
	switch {
	case m.err != nil:
		status = StatusFail.Render("failed")
	case m.finished:
		status = StatusPass.Render("done")
	case m.quit:
		status = Subtle.Render("stopped")
	}
	s.WriteString(Title.Render(fmt.Sprintf("sweep: %s", m.method)) + "  " + status + "\n\n")

	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	s.WriteString(ProgressBar(frac, barWidth) + fmt.Sprintf(" %d/%d  %v\n\n", m.done, m.total, m.elapsed.Round(time.Millisecond)))

	for _, row := range []struct {
		name string
		vals []float64
		last float64
	}{
		{"Z", m.z, m.last.Z},
		{"E", m.e, m.last.E},
		{"F", m.f, m.last.F},
	} {
		s.WriteString(labelStyle.Render(row.name) + SparklineChart(row.vals, sparkWidth))
		if m.done > 0 {
			s.WriteString("  " + MetricValue.Render(fmt.Sprintf("%.10g", row.last)))
		}
		s.WriteString("\n")
	}
	if m.done > 0 {
		s.WriteString(labelStyle.Render("last V") + fmt.Sprintf("%.6g\n", m.last.Volume))
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFail.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("q: quit") + "\n")
	return GlassPanel.Render(s.String())
}

// Result returns the sweep outcome once DoneMsg has been received.
func (m LiveModel) Result() (*sweep.Result, error) {
	return m.result, m.err
}

func (m LiveModel) Done() int { return m.done }

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards sweep samples to a running program.
type ProgramObserver struct {
	p Sender
}

func NewObserver(p Sender) *ProgramObserver {
	return &ProgramObserver{p: p}
}

func (o *ProgramObserver) OnSample(s sweep.Sample, total int) {
	o.p.Send(SampleMsg{Sample: s, Total: total})
}
