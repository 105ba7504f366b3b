// Package tui implements the interactive prediction form and result panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/ecopredict/internal/engine"
	"github.com/rshade/ecopredict/internal/score"
)

// FormState represents the current state of the prediction form.
type FormState int

const (
	// FormStateEditing indicates the user is filling in the form.
	FormStateEditing FormState = iota
	// FormStatePredicting indicates a prediction is in flight.
	FormStatePredicting
	// FormStateResult indicates a prediction result is displayed.
	FormStateResult
	// FormStateError indicates the last prediction failed.
	FormStateError
	// FormStateQuitting indicates the application is exiting.
	FormStateQuitting
)

// PredictFunc computes a prediction for the submitted input.
type PredictFunc func(context.Context, score.Input) (*engine.Prediction, error)

// SaveFunc exports a prediction and returns where it was written.
type SaveFunc func(*engine.Prediction) (string, error)

// predictionMsg is sent when a prediction completes.
type predictionMsg struct {
	pred *engine.Prediction
	err  error
}

// savedMsg is sent when a report export completes.
type savedMsg struct {
	path string
	err  error
}

const numberInputWidth = 10

// numberField is a free-text numeric input with inline validation.
type numberField struct {
	name  string
	label string
	input textinput.Model
	err   string
}

// choiceField cycles through a fixed option list.
type choiceField struct {
	name     string
	label    string
	options  []string
	selected int
}

func (c *choiceField) value() string {
	return c.options[c.selected]
}

func (c *choiceField) move(delta int) {
	n := len(c.options)
	c.selected = ((c.selected+delta)%n + n) % n
}

// FormModel is the Bubble Tea model for the interactive prediction form.
type FormModel struct {
	ctx context.Context

	numbers []numberField
	choices []choiceField
	focused int

	state    FormState
	spinner  spinner.Model
	result   *engine.Prediction
	err      error
	status   string

	predictFn PredictFunc
	saveFn    SaveFunc
}

// NewFormModel returns a form pre-filled with initial.
func NewFormModel(ctx context.Context, initial score.Input, predictFn PredictFunc) *FormModel {
	m := &FormModel{
		ctx:       ctx,
		state:     FormStateEditing,
		predictFn: predictFn,
	}

	m.numbers = []numberField{
		newNumberField(score.FieldUsagePercent, "Appliance usage (%)", initial.UsagePercent),
		newNumberField(score.FieldHumidityPercent, "Humidity (%)", initial.HumidityPercent),
		newNumberField(score.FieldSolarKWh, "Solar energy (kWh/day)", initial.SolarKWh),
	}
	m.choices = []choiceField{
		newChoiceField(score.FieldWallMaterial, "Wall material", toStrings(score.WallMaterials()), string(initial.WallMaterial)),
		newChoiceField(score.FieldRoofType, "Roof type", toStrings(score.RoofTypes()), string(initial.RoofType)),
		newChoiceField(score.FieldOrientation, "Orientation", toStrings(score.Orientations()), string(initial.Orientation)),
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = InfoStyle

	m.numbers[0].input.Focus()
	return m
}

// WithSaveFunc enables exporting the report with the 's' key.
func (m *FormModel) WithSaveFunc(fn SaveFunc) *FormModel {
	m.saveFn = fn
	return m
}

func newNumberField(name, label string, v float64) numberField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = numberInputWidth
	ti.Width = numberInputWidth
	ti.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
	return numberField{name: name, label: label, input: ti}
}

// newChoiceField adds a leading "" option so a categorical value can be left unset.
func newChoiceField(name, label string, options []string, current string) choiceField {
	opts := append([]string{""}, options...)
	c := choiceField{name: name, label: label, options: opts}
	for i, o := range opts {
		if strings.EqualFold(o, current) {
			c.selected = i
		}
	}
	return c
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func (m *FormModel) fieldCount() int {
	return len(m.numbers) + len(m.choices)
}

// Init initializes the model.
func (m *FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model state.
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionMsg:
		return m.handlePrediction(msg)

	case savedMsg:
		if msg.err != nil {
			m.status = ErrorStyle.Render("Save failed: " + msg.err.Error())
		} else {
			m.status = OKStyle.Render("Report saved to " + msg.path)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != FormStatePredicting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.state == FormStateEditing && m.focused < len(m.numbers) {
		var cmd tea.Cmd
		m.numbers[m.focused].input, cmd = m.numbers[m.focused].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyMsg processes keyboard input.
//
//nolint:exhaustive // Only handling relevant key types for form navigation.
func (m *FormModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.state {
	case FormStatePredicting:
		return m, nil
	case FormStateResult, FormStateError:
		return m.handleResultKey(msg)
	case FormStateEditing, FormStateQuitting:
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m.quit()
	case tea.KeyTab, tea.KeyDown:
		return m, m.focus(m.focused + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focus(m.focused - 1)
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyLeft, tea.KeyRight:
		if c := m.focusedChoice(); c != nil {
			if msg.Type == tea.KeyLeft {
				c.move(-1)
			} else {
				c.move(1)
			}
			return m, nil
		}
	}

	if m.focusedChoice() != nil {
		return m, nil
	}

	f := &m.numbers[m.focused]
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	m.validateField(f)
	return m, cmd
}

func (m *FormModel) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m.quit()
	case "e", "enter":
		m.state = FormStateEditing
		m.err = nil
		m.status = ""
		return m, m.focus(m.focused)
	case "s":
		if m.state == FormStateResult && m.saveFn != nil && m.result != nil {
			pred, save := m.result, m.saveFn
			return m, func() tea.Msg {
				path, err := save(pred)
				return savedMsg{path: path, err: err}
			}
		}
	}
	return m, nil
}

func (m *FormModel) quit() (tea.Model, tea.Cmd) {
	m.state = FormStateQuitting
	return m, tea.Quit
}

// focus moves focus to index i, wrapping around the field list.
func (m *FormModel) focus(i int) tea.Cmd {
	n := m.fieldCount()
	m.focused = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range m.numbers {
		if j == m.focused {
			cmd = m.numbers[j].input.Focus()
		} else {
			m.numbers[j].input.Blur()
		}
	}
	return cmd
}

func (m *FormModel) focusedChoice() *choiceField {
	if m.focused < len(m.numbers) {
		return nil
	}
	return &m.choices[m.focused-len(m.numbers)]
}

// validateField sets the inline error for f and returns its parsed value.
func (m *FormModel) validateField(f *numberField) float64 {
	raw := strings.TrimSpace(f.input.Value())
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.err = "Enter a number"
		return 0
	}
	f.err = ""
	var ve *score.ValidationError
	if err := score.CheckField(f.name, v); errors.As(err, &ve) {
		f.err = ve.Message()
	}
	return v
}

// Input returns the form's current values. ok is false when any numeric
// field has an error.
func (m *FormModel) Input() (score.Input, bool) {
	var in score.Input
	ok := true
	values := make(map[string]float64, len(m.numbers))
	for i := range m.numbers {
		values[m.numbers[i].name] = m.validateField(&m.numbers[i])
		if m.numbers[i].err != "" {
			ok = false
		}
	}
	in.UsagePercent = values[score.FieldUsagePercent]
	in.HumidityPercent = values[score.FieldHumidityPercent]
	in.SolarKWh = values[score.FieldSolarKWh]
	in.WallMaterial = score.WallMaterial(m.choices[0].value())
	in.RoofType = score.RoofType(m.choices[1].value())
	in.Orientation = score.Orientation(m.choices[2].value())
	return in, ok
}

func (m *FormModel) submit() (tea.Model, tea.Cmd) {
	in, ok := m.Input()
	if !ok || m.predictFn == nil {
		return m, nil
	}

	m.state = FormStatePredicting
	ctx, predict := m.ctx, m.predictFn
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		pred, err := predict(ctx, in)
		return predictionMsg{pred: pred, err: err}
	})
}

func (m *FormModel) handlePrediction(msg predictionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.state = FormStateError
		return m, nil
	}
	m.result = msg.pred
	m.state = FormStateResult
	return m, nil
}

// State returns the current form state.
func (m *FormModel) State() FormState {
	return m.state
}

// Result returns the most recent prediction, or nil.
func (m *FormModel) Result() *engine.Prediction {
	return m.result
}

// FieldError returns the inline error for a numeric field.
func (m *FormModel) FieldError(name string) string {
	for _, f := range m.numbers {
		if f.name == name {
			return f.err
		}
	}
	return ""
}

// View renders the current view.
func (m *FormModel) View() string {
	switch m.state {
	case FormStateQuitting:
		return ""
	case FormStatePredicting:
		return m.spinner.View() + " " + RenderLoadingIndicator() + "\n"
	case FormStateError:
		return ErrorStyle.Render(fmt.Sprintf("Prediction failed: %v", m.err)) +
			"\n\n" + SubtleStyle.Render("e: edit • q: quit") + "\n"
	case FormStateResult:
		help := "e: edit • q: quit"
		if m.saveFn != nil {
			help = "s: save report • " + help
		}
		out := RenderResult(m.result) + "\n"
		if m.status != "" {
			out += m.status + "\n"
		}
		return out + SubtleStyle.Render(help) + "\n"
	case FormStateEditing:
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Energy Efficiency Prediction"))
	b.WriteString("\n\n")

	for i, f := range m.numbers {
		b.WriteString(m.label(i, f.label))
		b.WriteString(f.input.View())
		if f.err != "" {
			b.WriteString("  " + ErrorStyle.Render(f.err))
		}
		b.WriteString("\n")
	}
	for i, c := range m.choices {
		idx := len(m.numbers) + i
		value := c.value()
		if value == "" {
			value = "(none)"
		}
		if idx == m.focused {
			value = "‹ " + FocusedStyle.Render(value) + " ›"
		}
		b.WriteString(m.label(idx, c.label) + value + "\n")
	}

	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("tab/↑↓: move • ←→: change option • enter: predict • esc: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *FormModel) label(idx int, text string) string {
	if idx == m.focused {
		return FocusedStyle.Inherit(LabelStyle).Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}
