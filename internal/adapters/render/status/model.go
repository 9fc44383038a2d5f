package status

import (
	"errors"
	"io"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// groupedMsg carries the sensors bucketed per account, in first-seen order.
type groupedMsg struct {
	groups []accountGroup
}

type model struct {
	sensors []domain.PickupSensor
	opts    RenderOptions
	styles  styles
	groups  []accountGroup
	output  string
}

func (m model) Init() tea.Cmd {
	sensors := m.sensors
	return func() tea.Msg {
		return groupedMsg{groups: groupByAccount(sensors)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	grouped, ok := msg.(groupedMsg)
	if !ok {
		return m, nil
	}

	m.groups = grouped.groups
	m.output = renderView(len(m.sensors), m.groups, m.opts, m.styles)
	return m, tea.Quit
}

func (m model) View() string {
	return m.output
}

// Render lays out sensors grouped by account. Titles come from opts.
func Render(sensors []domain.PickupSensor, opts RenderOptions) (string, error) {
	initial := model{sensors: sensors, opts: opts, styles: newStyles()}
	finalModel, err := tea.NewProgram(initial, tea.WithInput(nil), tea.WithOutput(io.Discard)).Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return rendered.View(), nil
}
