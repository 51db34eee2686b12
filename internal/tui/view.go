package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/metroboard/metro/internal/board"
	"github.com/metroboard/metro/internal/config"
	"github.com/metroboard/metro/internal/display"
	"github.com/metroboard/metro/internal/models"
)

// View renders the entire TUI.
func (m Model) View() string {
	parts := []string{
		m.renderHeader(),
		stylePanel.Render(m.renderFrame()),
		m.renderArrivals(),
		m.renderStatusBar(),
	}
	if m.editing {
		parts = append(parts, m.renderInput())
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	info := m.plugin.Info()
	return fmt.Sprintf("%s %s %s",
		styleLogo.Render("Ⓜ metro"),
		styleHeader.Render(display.HeaderTitle(m.cfg.Station)),
		styleMuted.Render("("+info.StationCode+")"),
	)
}

func (m Model) renderFrame() string {
	if m.frame == "" {
		return styleLoading.Render(fmt.Sprintf("%-*s", m.bitmap.Width(), "Loading..."))
	}
	return m.frame
}

// renderArrivals lists the real arrivals as text below the panel
func (m Model) renderArrivals() string {
	if !m.plugin.Enabled() {
		return styleError.Render("board disabled: " + firstLine(m.plugin.ConfigError()))
	}

	b := m.plugin.Board()
	if m.paged() {
		b = m.plugin.Directional().ForDirection(m.plugin.Page().Direction())
	}
	if b.IsEmpty() {
		if isErrorBoard(b) {
			return styleError.Render(models.ErrorText)
		}
		return styleMuted.Render(models.NoDataText)
	}

	var sb strings.Builder
	for i, row := range b.RealRows() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderRow(row))
	}
	return sb.String()
}

func (m Model) renderRow(row models.TrainRow) string {
	var sb strings.Builder
	if m.cfg.DisplayOptions.ShowLineAbbreviation {
		code := row.Line
		if code == "" {
			code = "--"
		}
		sb.WriteString(lineStyle(row.Line).Render(fmt.Sprintf("%-2s", code)))
		sb.WriteString(" ")
	}

	minutes := fmt.Sprintf("%6s", row.Minutes)
	switch row.Minutes {
	case models.ArrivingToken, models.BoardingToken:
		minutes = styleArriving.Render(minutes)
	case models.NoMinutesDisplay:
		minutes = styleMuted.Render(minutes)
	default:
		minutes = styleHeader.Render(minutes)
	}
	sb.WriteString(minutes)
	sb.WriteString("  ")
	sb.WriteString(row.Destination)
	return sb.String()
}

func (m Model) renderStatusBar() string {
	info := m.plugin.Info()
	var items []string

	items = append(items, fmt.Sprintf("%d trains", info.TrainsCount))
	if m.cfg.Layout == config.LayoutPaged {
		items = append(items, m.plugin.Page().String())
	}

	updated := "never"
	if info.LastUpdate != nil {
		updated = info.LastUpdate.Format("15:04:05")
	}
	items = append(items, "updated "+updated)

	if m.fetching {
		items = append(items, styleLoading.Render("fetching..."))
	}
	if m.paused {
		items = append(items, "paused")
	}

	status := styleStatusBar.Render(strings.Join(items, " · "))
	if err := m.plugin.LastError(); err != nil {
		status += " " + styleError.Render(err.Error())
	}
	return status
}

func (m Model) renderInput() string {
	line := styleCode.Render("Station: ") + m.input.View()
	if m.inputErr != "" {
		line += "\n" + styleError.Render(m.inputErr)
	}
	return line
}

func isErrorBoard(b board.Board) bool {
	return len(b.Rows) > 0 && b.Rows[0].Destination == models.ErrorText
}

func firstLine(err error) string {
	if err == nil {
		return "disabled in config"
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	return msg
}
