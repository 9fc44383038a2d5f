// Package onboard is the interactive terminal wizard for adding a
// subscription.
package onboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/wm-pickup-cli/internal/application"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrAborted = errors.New("onboarding aborted")

type phase int

const (
	phaseCredentials phase = iota
	phaseAccount
	phaseServices
	phaseDone
)

type credentialsDoneMsg struct {
	step *application.AccountStep
	err  error
}

type accountDoneMsg struct {
	step *application.ServiceStep
	err  error
}

type servicesDoneMsg struct {
	entry domain.ConfigEntry
	err   error
}

type model struct {
	ctx   context.Context
	flow  *application.CredentialsStep
	phase phase

	username textinput.Model
	password textinput.Model
	focus    int

	accountStep *application.AccountStep
	serviceStep *application.ServiceStep
	cursor      int
	selected    map[string]bool

	spinner spinner.Model
	busy    bool
	message string

	entry domain.ConfigEntry
	err   error
}

func newModel(ctx context.Context, onboarding *application.Onboarding) model {
	username := textinput.New()
	username.Placeholder = "email"
	username.Prompt = "Username: "
	username.Width = 40
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.Width = 40

	return model{
		ctx:      ctx,
		flow:     onboarding.Begin(),
		username: username,
		password: password,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case credentialsDoneMsg:
		return m.onCredentials(msg)
	case accountDoneMsg:
		return m.onAccount(msg)
	case servicesDoneMsg:
		return m.onServices(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		m.err = ErrAborted
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.phase {
	case phaseCredentials:
		return m.handleCredentialsKey(msg)
	case phaseAccount:
		return m.handleAccountKey(msg)
	case phaseServices:
		return m.handleServicesKey(msg)
	default:
		return m, nil
	}
}

func (m model) handleCredentialsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m.toggleFocus(), textinput.Blink
	case tea.KeyEnter:
		if m.focus == 0 {
			return m.toggleFocus(), textinput.Blink
		}
		creds := domain.Credentials{Username: m.username.Value(), Password: m.password.Value()}
		return m.start(func() tea.Msg {
			step, err := m.flow.Submit(m.ctx, creds)
			return credentialsDoneMsg{step: step, err: err}
		})
	default:
		return m.updateInputs(msg)
	}
}

func (m model) toggleFocus() model {
	if m.focus == 0 {
		m.focus = 1
		m.username.Blur()
		m.password.Focus()
	} else {
		m.focus = 0
		m.password.Blur()
		m.username.Focus()
	}
	return m
}

func (m model) handleAccountKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.accountStep.Form().Options

	switch msg.String() {
	case "up", "k":
		m.cursor = moveCursor(m.cursor, -1, len(options))
	case "down", "j":
		m.cursor = moveCursor(m.cursor, 1, len(options))
	case "enter":
		if len(options) == 0 {
			// Listing failed; go back so the credentials can be resubmitted.
			m.phase = phaseCredentials
			return m, textinput.Blink
		}
		id := domain.AccountID(options[m.cursor].Value)
		step := m.accountStep
		return m.start(func() tea.Msg {
			next, err := step.Submit(m.ctx, id)
			return accountDoneMsg{step: next, err: err}
		})
	}

	return m, nil
}

func (m model) handleServicesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.serviceStep.Form().Options

	switch msg.String() {
	case "up", "k":
		m.cursor = moveCursor(m.cursor, -1, len(options))
	case "down", "j":
		m.cursor = moveCursor(m.cursor, 1, len(options))
	case " ", "x":
		if len(options) > 0 {
			value := options[m.cursor].Value
			m.selected[value] = !m.selected[value]
		}
	case "a":
		all := !allSelected(options, m.selected)
		for _, option := range options {
			m.selected[option.Value] = all
		}
	case "enter":
		ids := make([]domain.ServiceID, 0, len(options))
		for _, option := range options {
			if m.selected[option.Value] {
				ids = append(ids, domain.ServiceID(option.Value))
			}
		}
		step := m.serviceStep
		return m.start(func() tea.Msg {
			entry, err := step.Submit(m.ctx, ids)
			return servicesDoneMsg{entry: entry, err: err}
		})
	}

	return m, nil
}

func (m model) start(run tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.message = ""
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m model) onCredentials(msg credentialsDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.fail(msg.err)
	}

	m.accountStep = msg.step
	m.phase = phaseAccount
	m.cursor = 0
	m.message = formMessage(msg.step.Form())
	return m, nil
}

func (m model) onAccount(msg accountDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.fail(msg.err)
	}

	m.serviceStep = msg.step
	m.phase = phaseServices
	m.cursor = 0
	m.selected = make(map[string]bool)
	for _, id := range msg.step.Form().Defaults {
		m.selected[id] = true
	}
	m.message = formMessage(msg.step.Form())
	return m, nil
}

func (m model) onServices(msg servicesDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		return m.fail(msg.err)
	}

	m.entry = msg.entry
	m.phase = phaseDone
	return m, tea.Quit
}

// fail keeps the wizard on the current step for a rejected submission and
// quits on anything else.
func (m model) fail(err error) (tea.Model, tea.Cmd) {
	var formErr *application.FormError
	if errors.As(err, &formErr) {
		m.message = formErr.Code.Message()
		return m, nil
	}

	m.err = err
	return m, tea.Quit
}

func (m model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase != phaseCredentials || m.busy {
		return m, nil
	}

	var userCmd, passCmd tea.Cmd
	m.username, userCmd = m.username.Update(msg)
	m.password, passCmd = m.password.Update(msg)
	return m, tea.Batch(userCmd, passCmd)
}

func formMessage(form application.Form) string {
	if code, ok := form.Error(); ok {
		return code.Message()
	}
	return ""
}

func moveCursor(cursor, delta, n int) int {
	if n == 0 {
		return 0
	}
	return (cursor + delta + n) % n
}

func allSelected(options []application.Option, selected map[string]bool) bool {
	for _, option := range options {
		if !selected[option.Value] {
			return false
		}
	}
	return len(options) > 0
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("159"))
)

func (m model) View() string {
	var b strings.Builder

	switch m.phase {
	case phaseCredentials:
		b.WriteString(titleStyle.Render("Sign in to your waste pickup account") + "\n\n")
		b.WriteString(m.username.View() + "\n")
		b.WriteString(m.password.View() + "\n")
	case phaseAccount:
		b.WriteString(titleStyle.Render("Select an account") + "\n\n")
		for i, option := range m.accountStep.Form().Options {
			b.WriteString(m.pointer(i) + fmt.Sprintf("%s (%s)", option.Label, option.Value) + "\n")
		}
	case phaseServices:
		b.WriteString(titleStyle.Render("Select services to track") + "\n\n")
		for i, option := range m.serviceStep.Form().Options {
			box := "[ ]"
			if m.selected[option.Value] {
				box = selectedStyle.Render("[x]")
			}
			b.WriteString(m.pointer(i) + box + " " + option.Label + "\n")
		}
	case phaseDone:
		return fmt.Sprintf("Added %s with %d service(s).\n", m.entry.Title, len(m.entry.Services))
	}

	if m.message != "" {
		b.WriteString("\n" + errorStyle.Render(m.message) + "\n")
	}
	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " Contacting provider...\n")
	} else {
		b.WriteString("\n" + hintStyle.Render(m.hint()) + "\n")
	}

	return b.String()
}

func (m model) pointer(i int) string {
	if i == m.cursor {
		return cursorStyle.Render("> ")
	}
	return "  "
}

func (m model) hint() string {
	switch m.phase {
	case phaseAccount:
		if len(m.accountStep.Form().Options) == 0 {
			return "enter: back to sign in, esc: quit"
		}
		return "up/down: move, enter: select, esc: quit"
	case phaseServices:
		return "space: toggle, a: all, enter: save, esc: quit"
	default:
		return "tab: switch field, enter: continue, esc: quit"
	}
}

// Run drives the wizard until an entry is saved or the user quits.
func Run(ctx context.Context, onboarding *application.Onboarding, in io.Reader, out io.Writer) (domain.ConfigEntry, error) {
	p := tea.NewProgram(
		newModel(ctx, onboarding),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.ConfigEntry{}, err
	}

	result, ok := finalModel.(model)
	if !ok {
		return domain.ConfigEntry{}, fmt.Errorf("unexpected final wizard model type %T", finalModel)
	}
	if result.err != nil {
		return domain.ConfigEntry{}, result.err
	}
	if result.phase != phaseDone {
		return domain.ConfigEntry{}, ErrAborted
	}

	return result.entry, nil
}
