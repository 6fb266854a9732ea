package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/daily/internal/logtail"
	"github.com/five82/daily/internal/schedule"
)

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderStatus(),
		m.logView.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var state string
	switch {
	case snap.IsOffline():
		state = styles.DangerText.Render("OFFLINE")
	case !snap.HasStatus:
		state = styles.MutedText.Render("connecting")
	case snap.LastError != nil:
		state = styles.WarningText.Render("retrying")
	default:
		state = styles.SuccessText.Render("online")
	}

	left := styles.Logo.Render("daily") + "  " + styles.MutedText.Render(m.daemon)
	right := state
	if !snap.LastUpdated.IsZero() {
		right += "  " + styles.FaintText.Render("updated "+formatAge(m.now().Sub(snap.LastUpdated)))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	status := m.snapshot.Status
	now := m.now()

	applied := status.AppliedURL
	if applied == "" {
		applied = styles.FaintText.Render("nothing applied yet")
	}

	override := styles.FaintText.Render("none")
	if o := status.Override; o != nil {
		override = styles.AccentText.Render(o.URL) + "  " +
			styles.MutedText.Render(formatRemaining(o.Expiry.Sub(now)))
	}

	lines := []string{
		styles.Label.Render("Wallpaper") + styles.Text.Render(applied),
		styles.Label.Render("Override") + override,
	}
	lines = append(lines, m.scheduleLines(status.Config, now)...)
	if err := m.snapshot.LastError; err != nil {
		lines = append(lines, styles.Label.Render("Error")+styles.DangerText.Render(err.Error()))
	}

	width := m.width - 2
	if width < 10 {
		width = 10
	}
	return styles.Panel.Width(width).Height(statusLines - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) scheduleLines(doc *schedule.Document, now time.Time) []string {
	styles := m.theme.Styles()
	if doc == nil {
		return []string{styles.Label.Render("Schedule") + styles.WarningText.Render("Config not loaded.")}
	}
	w := doc.Wallpapers
	summary := fmt.Sprintf("%d dated, %d periods", len(w.Dates), len(w.Periods))
	lines := []string{
		styles.Label.Render("Schedule") + styles.Text.Render(summary),
		styles.Label.Render("Today") + styles.Text.Render(w.Days.For(now.Weekday())),
	}
	if u, ok := w.Dates[now.Format("01-02")]; ok {
		lines = append(lines, styles.Label.Render("Date")+styles.InfoText.Render(u))
	}
	if p := todaysPeriods(w.Periods, now.Weekday()); len(p) > 0 {
		lines = append(lines, styles.Label.Render("Periods")+styles.Text.Render(strings.Join(p, ", ")))
	}
	return lines
}

func todaysPeriods(periods []schedule.Period, day time.Weekday) []string {
	var out []string
	for _, p := range periods {
		if d, ok := schedule.ParseWeekday(p.Day); ok && d == day {
			out = append(out, p.Start+"-"+p.End)
		}
	}
	return out
}

func (m Model) renderLogLines() string {
	styles := m.theme.Styles()
	logs := m.snapshot.Status.Logs
	if len(logs) == 0 {
		return styles.FaintText.Render("no log lines")
	}
	var b strings.Builder
	for i, line := range logs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styles.LevelStyle(logtail.Level(line)).Render(line))
	}
	return b.String()
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	follow := "follow off"
	if m.follow {
		follow = "follow on"
	}
	text := fmt.Sprintf("%s  ·  theme %s  ·  h help  ·  e quit", follow, m.theme.Name)
	return styles.Footer.Width(m.width).Render(text)
}

// formatRemaining renders the time left on an override.
func formatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expiring"
	}
	return d.Round(time.Second).String() + " left"
}

func formatAge(d time.Duration) string {
	if d < time.Second {
		return "just now"
	}
	return d.Round(time.Second).String() + " ago"
}
