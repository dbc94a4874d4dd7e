package tui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/photolab/internal/experiment"
	"github.com/san-kum/photolab/internal/materials"
	"github.com/san-kum/photolab/internal/physics"
)

// Options configures the interactive lab.
type Options struct {
	Params     physics.Parameters
	SweepFrom  float64
	SweepTo    float64
	SweepStep  float64
	ExportPath string
}

type field struct {
	label    string
	unit     string
	step     float64
	min, max float64
	get      func(*physics.Parameters) *float64
}

var fields = []field{
	{"wavelength", "nm", 10, physics.MinWavelengthNm, physics.MaxWavelengthNm,
		func(p *physics.Parameters) *float64 { return &p.WavelengthNm }},
	{"intensity", "W/m²", 0.5, physics.MinIntensity, physics.MaxIntensity,
		func(p *physics.Parameters) *float64 { return &p.IntensityWPerM2 }},
	{"area", "cm²", 0.05, physics.MinAreaCm2, physics.MaxAreaCm2,
		func(p *physics.Parameters) *float64 { return &p.AreaCm2 }},
	{"voltage", "V", 0.1, physics.MinVoltage, physics.MaxVoltage,
		func(p *physics.Parameters) *float64 { return &p.AppliedVoltageV }},
}

type model struct {
	lab       *experiment.Lab
	opts      Options
	materials []materials.Material
	matIdx    int
	params    physics.Parameters
	cursor    int

	result       physics.Result
	err          error
	status       string
	lastMeasured time.Time

	width  int
	height int
}

func newModel(lab *experiment.Lab, opts Options) model {
	m := model{
		lab:       lab,
		opts:      opts,
		materials: lab.Catalog().List(),
		params:    opts.Params,
		width:     100,
		height:    40,
	}
	for i, mat := range m.materials {
		if strings.EqualFold(mat.ID, strings.TrimSpace(opts.Params.MaterialID)) {
			m.matIdx = i
		}
	}
	m.params.MaterialID = m.materials[m.matIdx].ID
	m.evaluate()
	return m
}

func (m model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.evaluate()
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(fields)-1 {
			m.cursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "tab", "n":
		m.matIdx = (m.matIdx + 1) % len(m.materials)
		m.params.MaterialID = m.materials[m.matIdx].ID
		m.evaluate()
	case "shift+tab", "N":
		m.matIdx = (m.matIdx + len(m.materials) - 1) % len(m.materials)
		m.params.MaterialID = m.materials[m.matIdx].ID
		m.evaluate()
	case "m", " ":
		m.measure()
	case "s":
		m.sweep()
	case "r":
		m.lab.Reset()
		m.lastMeasured = time.Time{}
		m.status = "ledger cleared"
	case "e":
		m.export()
	}
	return m, nil
}

func (m *model) adjust(dir float64) {
	f := fields[m.cursor]
	v := f.get(&m.params)
	next := math.Round((*v+dir*f.step)*1000) / 1000
	*v = math.Max(f.min, math.Min(f.max, next))
	m.evaluate()
}

func (m *model) evaluate() {
	res, err := m.lab.Evaluate(m.params)
	m.err = err
	if err == nil {
		m.result = res
	}
}

func (m *model) measure() {
	if m.err != nil {
		m.status = m.err.Error()
		return
	}
	rec, err := m.lab.Measure(m.params, m.result)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.lastMeasured = rec.Timestamp
	m.status = fmt.Sprintf("#%d  I = %.6f ± %.6f µA", rec.Sequence, rec.MeanUa, rec.StdErrorUa)
}

func (m *model) sweep() {
	recs, err := m.lab.Sweep(m.params, m.opts.SweepFrom, m.opts.SweepTo, m.opts.SweepStep)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.lastMeasured = recs[len(recs)-1].Timestamp
	m.status = fmt.Sprintf("swept %d points from %.2f V to %.2f V", len(recs), m.opts.SweepFrom, m.opts.SweepTo)
}

func (m *model) export() {
	text, err := m.lab.Export()
	if err != nil {
		m.status = err.Error()
		return
	}
	if err := os.WriteFile(m.opts.ExportPath, []byte(text), 0644); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("exported %d records to %s", m.lab.Count(), m.opts.ExportPath)
}

func (m model) View() string {
	var sb strings.Builder

	mat := m.materials[m.matIdx]
	sb.WriteString(title.Render("photolab") + dim.Render("  photoelectric effect bench") + "\n\n")

	left := lipgloss.JoinVertical(lipgloss.Left, m.viewControls(mat), m.viewResult())
	right := lipgloss.JoinVertical(lipgloss.Left, m.viewCurve(), m.viewLedger())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(yellow.Render(m.status) + "\n")
	}
	sb.WriteString(keyHint.Render("↑↓ select  ←→ adjust  tab material  m measure  s sweep  r reset  e export  q quit"))
	return sb.String()
}

func (m model) viewControls(mat materials.Material) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s\n", Swatch(mat.DisplayColor), white.Render(mat.Name),
		dim.Render(fmt.Sprintf("(%s, W = %.2f eV)", mat.Symbol, mat.WorkFunctionEv))))
	for i, f := range fields {
		p := m.params
		v := *f.get(&p)
		label := fmt.Sprintf("%-10s %8.2f %s", f.label, v, f.unit)
		if i == m.cursor {
			sb.WriteString(selected.Render("▸ " + label))
		} else {
			sb.WriteString(dim.Render("  " + label))
		}
		if f.label == "wavelength" {
			sb.WriteString(" " + Swatch(WavelengthColor(v)))
		}
		sb.WriteString("\n")
	}
	return panel.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m model) viewResult() string {
	if m.err != nil {
		return panel.Render(red.Render(m.err.Error()))
	}
	r := m.result
	emission := red.Render("no emission")
	if r.EmissionOccurs {
		emission = green.Render("emission")
	}
	lines := []string{
		fmt.Sprintf("%s %s", cyan.Render("frequency  "), fmt.Sprintf("%.3e Hz", r.FrequencyHz)),
		fmt.Sprintf("%s %.3f eV", cyan.Render("photon E   "), r.PhotonEnergyEv),
		fmt.Sprintf("%s %.3f eV", cyan.Render("max KE     "), r.MaxKineticEnergyEv),
		fmt.Sprintf("%s %.1f nm", cyan.Render("threshold λ"), r.ThresholdWavelengthNm),
		fmt.Sprintf("%s %.3f V", cyan.Render("stopping V "), r.StoppingPotentialV),
		fmt.Sprintf("%s %.6f µA", cyan.Render("current    "), r.CurrentUa),
		emission,
	}
	return panel.Render(strings.Join(lines, "\n"))
}

func (m model) viewCurve() string {
	curve := m.lab.IVCurve()
	if len(curve) == 0 {
		return panel.Render(dim.Render("I-V curve: no measurements yet"))
	}
	data := make([]float64, len(curve))
	for i, p := range curve {
		data[i] = p.CurrentUa
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(48),
		asciigraph.Precision(5),
		asciigraph.Caption("mean current (µA), acquisition order"),
	)
	return panel.Render(magenta.Render(graph))
}

func (m model) viewLedger() string {
	snap := m.lab.Snapshot(0)
	var sb strings.Builder
	header := fmt.Sprintf("%4s %8s %7s %10s %10s", "#", "material", "V", "mean µA", "stderr")
	sb.WriteString(white.Render(header) + "\n")
	for _, r := range snap {
		sb.WriteString(fmt.Sprintf("%4d %8s %7.2f %10.6f %10.2e\n",
			r.Sequence, truncate(r.Material, 8), r.Parameters.AppliedVoltageV, r.MeanUa, r.StdErrorUa))
	}
	footer := fmt.Sprintf("%d measurements", m.lab.Count())
	if !m.lastMeasured.IsZero() {
		footer += ", last " + humanize.Time(m.lastMeasured)
	}
	sb.WriteString(dim.Render(footer))
	return panel.Render(sb.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// RunInteractive starts the terminal lab. The bubbletea loop is the only
// caller of lab, so evaluation polling never interleaves with a measurement.
func RunInteractive(lab *experiment.Lab, opts Options) error {
	if opts.ExportPath == "" {
		opts.ExportPath = "photolab.csv"
	}
	p := tea.NewProgram(newModel(lab, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
