package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/notify"
	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/shared"
)

// View renders the tabs, the current tab body, the notification toast, the player bar and help.
func (m *Model) View() string {
	sections := []string{m.renderTabs(), m.renderBody()}
	if toast := m.renderToast(); toast != "" {
		sections = append(sections, toast)
	}
	sections = append(sections, m.renderPlayerBar(), m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = styles.activeTab.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m *Model) renderBody() string {
	switch m.mode {
	case pickerMode:
		return m.renderPicker()
	case confirmMode:
		return m.renderConfirm()
	}

	switch m.tab {
	case LibraryTab:
		if m.openPlaylist != "" {
			return m.detail.View()
		}
		if m.mode == inputMode {
			return m.nameInput.View() + "\n\n" + m.playlists.View()
		}
		return m.playlists.View()
	case SearchTab:
		return m.searchInput.View() + "\n\n" + m.results.View()
	case QueueTab:
		if len(m.session.Queue) == 0 {
			return styles.help.Render("The queue is empty. Play something from your library or search.")
		}
		return m.queue.View()
	case HistoryTab:
		if len(m.history.Items()) == 0 {
			return styles.help.Render("Nothing played yet.")
		}
		return m.history.View()
	case AITab:
		return m.renderAI()
	}
	return ""
}

func (m *Model) renderAI() string {
	var b strings.Builder
	b.WriteString(m.promptInput.View())
	b.WriteString("\n\n")
	switch {
	case m.generating:
		b.WriteString(m.spinner.View() + " " + m.loading)
	case m.generatedPl == nil:
		b.WriteString(styles.help.Render("Press / and describe what you want to hear."))
	default:
		b.WriteString(m.generated.View())
	}
	return b.String()
}

func (m *Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Add %q to...", m.pickTrack.Title)))
	b.WriteString("\n")
	for i, name := range m.picker {
		if i == m.pickIndex {
			b.WriteString(styles.ok.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete playlist %q?", m.confirmName))
	return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
}

func (m *Model) renderToast() string {
	if m.notice == nil {
		return ""
	}
	if m.notice.Kind == notify.Error {
		return styles.toastErr.Render(m.notice.Message)
	}
	return styles.toastOK.Render(m.notice.Message)
}

func (m *Model) renderPlayerBar() string {
	s := m.session

	now := styles.help.Render("Nothing playing")
	if t, ok := s.CurrentTrack(); ok {
		icon := "⏸"
		if s.IsPlaying {
			icon = "▶"
		}
		now = fmt.Sprintf("%s %s %s", icon, styles.ok.Render(t.Title), styles.help.Render(t.Artist))
	}

	ratio := 0.0
	if s.Duration > 0 {
		ratio = min(s.Progress/s.Duration, 1)
	}
	timeline := fmt.Sprintf("%s %s / %s", m.bar.ViewAs(ratio), shared.FormatDuration(s.Progress), shared.FormatDuration(s.Duration))

	return styles.bar.Render(lipgloss.JoinVertical(lipgloss.Left, now, timeline, statusLine(s)))
}

func statusLine(s player.Session) string {
	parts := []string{fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5))}
	if s.Shuffle {
		parts = append(parts, styles.ok.Render("shuffle"))
	} else {
		parts = append(parts, styles.help.Render("shuffle"))
	}
	switch s.Repeat {
	case models.RepeatOff:
		parts = append(parts, styles.help.Render("repeat off"))
	default:
		parts = append(parts, styles.ok.Render("repeat "+s.Repeat.String()))
	}
	if s.Readiness != player.Ready {
		parts = append(parts, styles.warn.Render("player "+s.Readiness.String()))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderHelp() string {
	return m.help.View(m.keys)
}
