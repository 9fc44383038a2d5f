package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// Titles maps an account id to the title shown above its sensors.
	Titles map[domain.AccountID]string
}

func renderView(count int, groups []accountGroup, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Waste Pickup Schedule"),
		s.header.Render(fmt.Sprintf("sensors: %d", count)),
	}

	if count == 0 {
		lines = append(lines, s.empty.Render("No subscriptions configured. Run `wmp onboard` to add one."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, group := range groups {
		lines = append(lines, s.section.Render(renderAccount(group, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

type accountGroup struct {
	id      domain.AccountID
	sensors []domain.PickupSensor
}

// groupByAccount keeps the order in which accounts first appear.
func groupByAccount(sensors []domain.PickupSensor) []accountGroup {
	groups := make([]accountGroup, 0, 1)
	index := make(map[domain.AccountID]int)
	for _, sensor := range sensors {
		i, ok := index[sensor.AccountID]
		if !ok {
			i = len(groups)
			index[sensor.AccountID] = i
			groups = append(groups, accountGroup{id: sensor.AccountID})
		}
		groups[i].sensors = append(groups[i].sensors, sensor)
	}
	return groups
}

func renderAccount(group accountGroup, opts RenderOptions, s styles) string {
	parts := []string{s.account.Render(accountTitle(opts.Titles[group.id], group.id))}
	for _, sensor := range group.sensors {
		parts = append(parts, sensorLine(sensor, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(title string, id domain.AccountID) string {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Sprintf("Account %s", id)
	}
	return fmt.Sprintf("%s (%s)", trimmed, id)
}

func sensorLine(sensor domain.PickupSensor, opts RenderOptions, s styles) string {
	label := s.sensorKey.Render(fmt.Sprintf("%s:", sensor.Name))

	if !sensor.Available() {
		line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.unavailable.Render("unavailable"))
		if sensor.LastError != "" {
			line += " " + s.sensorMeta.Render(fmt.Sprintf("(%s)", sensor.LastError))
		}
		return line
	}

	value := *sensor.Value
	line := lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render(value.Format("Mon 02 Jan")))
	if !opts.Now.IsZero() {
		days := daysUntil(value, opts.Now)
		line += " " + lipgloss.NewStyle().Foreground(urgencyColor(days)).Render(formatRelative(days))
	}

	if sensor.Stale() {
		line += " " + s.warning.Render("[stale]")
		if !sensor.ResolvedAt.IsZero() {
			line += " " + s.sensorMeta.Render("as of "+sensor.ResolvedAt.Format("15:04 on 02 Jan"))
		}
	}

	return line
}

// daysUntil counts calendar days from now to value in value's zone. It
// returns -1 when now is unknown.
func daysUntil(value, now time.Time) int {
	if now.IsZero() {
		return -1
	}

	y1, m1, d1 := now.In(value.Location()).Date()
	y2, m2, d2 := value.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	return int(to.Sub(from).Hours() / 24)
}

func formatRelative(days int) string {
	switch {
	case days < 0:
		return "(past)"
	case days == 0:
		return "(today)"
	case days == 1:
		return "(tomorrow)"
	default:
		return fmt.Sprintf("(in %d days)", days)
	}
}

// urgencyColor fades from bright white on pickup day to grey a week out.
func urgencyColor(days int) lipgloss.Color {
	if days < 0 {
		return lipgloss.Color("245")
	}
	return interpolateColor(float64(7-days), 0, 7)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	baseColor := 240.0
	targetColor := 255.0

	return lipgloss.Color(fmt.Sprintf("%d", int(baseColor+(targetColor-baseColor)*normalized)))
}
