package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nextmusic/internal/tasks"
)

// waitForSession blocks until the coordinator signals a change.
func (m *Model) waitForSession() tea.Cmd {
	changes := m.deps.Player.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return sessionChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForNotification() tea.Cmd {
	changes := m.deps.Notify.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return notificationMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

// hideNotification dismisses id after the bus display duration. A newer notification survives it.
func (m *Model) hideNotification(id uint64) tea.Cmd {
	return tea.Tick(m.deps.Notify.HideAfter(), func(time.Time) tea.Msg {
		return dismissMsg(id)
	})
}

func (m *Model) waitForSearch() tea.Cmd {
	if m.deps.Search == nil {
		return nil
	}
	results := m.deps.Search.Results()
	return func() tea.Msg {
		select {
		case r, ok := <-results:
			if !ok {
				return nil
			}
			return searchResultMsg(r)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) fetchTrending() tea.Cmd {
	if m.deps.Catalog == nil {
		return nil
	}
	return func() tea.Msg {
		tracks, err := m.deps.Catalog.Trending(m.ctx, m.deps.Region)
		return trendingMsg(tracks, err)
	}
}

// startGenerate runs the generation and streams its progress into the model.
func (m *Model) startGenerate(prompt string) tea.Cmd {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || m.generating || m.deps.Engine == nil {
		return nil
	}
	m.generating = true
	m.loading = tasks.LoadingMessages[0]
	m.progressCh = make(chan tasks.ProgressUpdate, 8)

	return tea.Batch(m.generateCmd(prompt, m.progressCh), m.waitForProgress(), m.spinner.Tick)
}

func (m *Model) generateCmd(prompt string, progress chan<- tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		pl, err := m.deps.Engine.Generate(m.ctx, progress, prompt)
		close(progress)
		return generatedMsg(pl, err)
	}
}

// waitForProgress reads the next update while a generation is running.
func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case u, ok := <-ch:
			if !ok {
				return nil
			}
			return progressUpdateMsg(u)
		case <-m.ctx.Done():
			return nil
		}
	}
}
