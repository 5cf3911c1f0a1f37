package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/library"
	"github.com/desertthunder/nextmusic/internal/models"
	"github.com/desertthunder/nextmusic/internal/notify"
	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/desertthunder/nextmusic/internal/tasks"
)

const (
	seekStep   = 10.0
	volumeStep = 0.1
)

// openBrowser is replaced in tests.
var openBrowser = shared.OpenBrowser

// Tab is one of the top-level views.
type Tab int

const (
	LibraryTab Tab = iota
	SearchTab
	QueueTab
	HistoryTab
	AITab
)

var tabNames = []string{"Library", "Search", "Queue", "History", "AI"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return ""
}

type mode int

const (
	browseMode mode = iota
	inputMode
	pickerMode
	confirmMode
)

// Player is the subset of [player.Coordinator] the UI drives.
type Player interface {
	Session() player.Session
	Changes() <-chan struct{}
	LoadAndPlay(tracks []models.Track, startIndex int)
	TogglePlayback()
	Advance()
	Retreat()
	JumpTo(index int)
	Seek(seconds float64)
	SetVolume(v float64)
	SetShuffleMode(shuffle bool)
	CycleRepeatMode() models.RepeatMode
}

// Deps holds the collaborators the model needs.
type Deps struct {
	Player  Player
	Library *library.Library
	History *library.History
	Catalog services.Catalog
	Notify  *notify.Bus
	Search  *tasks.SearchSession
	Engine  *tasks.PlaylistEngine
	Region  string
	Logger  *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	tab    Tab
	mode   mode
	width  int
	height int

	session player.Session
	notice  *notify.Notification

	playlists    list.Model
	detail       list.Model
	openPlaylist string
	results      list.Model
	queue        list.Model
	history      list.Model
	generated    list.Model

	searchInput textinput.Model
	promptInput textinput.Model
	nameInput   textinput.Model

	query       string
	trending    []models.Track
	generatedPl *services.GeneratedPlaylist
	generating  bool
	loading     string
	progressCh  chan tasks.ProgressUpdate

	picker      []string
	pickIndex   int
	pickTrack   models.Track
	confirmName string

	spinner spinner.Model
	bar     progress.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}

	search := textinput.New()
	search.Placeholder = "Search songs, artists..."
	search.Prompt = "🔍 "
	search.CharLimit = 200

	prompt := textinput.New()
	prompt.Placeholder = "Describe a mood, an activity, a vibe..."
	prompt.Prompt = "✨ "
	prompt.CharLimit = 300

	name := textinput.New()
	name.Placeholder = "Playlist name"
	name.Prompt = "+ "
	name.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title.UnsetMarginBottom()

	m := &Model{
		ctx:         ctx,
		deps:        deps,
		logger:      logger,
		playlists:   newList("Your Library", "playlist", "playlists"),
		detail:      newList("", "track", "tracks"),
		results:     newList("Trending", "track", "tracks"),
		queue:       newList("Up Next", "track", "tracks"),
		history:     newList("Recently Played", "track", "tracks"),
		generated:   newList("Generated", "track", "tracks"),
		searchInput: search,
		promptInput: prompt,
		nameInput:   name,
		spinner:     sp,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	m.refreshLibrary()
	m.refreshSession()
	return m
}

// Init subscribes to the coordinator, the notification bus and the search session, and loads trending tracks.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForSession(),
		m.waitForNotification(),
		m.waitForSearch(),
		m.fetchTrending(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case Msg:
		return m.handleMsg(msg)
	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionChanged:
		m.refreshSession()
		return m, m.waitForSession()

	case MsgNotification:
		n, ok := m.deps.Notify.Current()
		if !ok {
			m.notice = nil
			return m, m.waitForNotification()
		}
		m.notice = &n
		return m, tea.Batch(m.waitForNotification(), m.hideNotification(n.ID))

	case MsgDismiss:
		m.deps.Notify.Dismiss(msg.data.(uint64))
		return m, nil

	case MsgSearchResult:
		r := msg.data.(tasks.SearchResult)
		if r.Seq != m.deps.Search.Latest() {
			m.logger.Debug("ignoring stale search result", "query", r.Query, "seq", r.Seq)
			return m, m.waitForSearch()
		}
		if r.Err != nil {
			m.deps.Notify.Error(services.UserMessage(r.Err))
		} else if strings.TrimSpace(r.Query) == "" {
			m.showTrending()
		} else {
			m.results.Title = fmt.Sprintf("Results for %q", r.Query)
			m.results.SetItems(trackItems(r.Tracks, -1))
			m.results.Select(0)
		}
		return m, m.waitForSearch()

	case MsgTrending:
		res := msg.data.(tracksResult)
		if res.err != nil {
			m.logger.Warn("trending failed", "error", res.err)
			return m, nil
		}
		m.trending = res.tracks
		if strings.TrimSpace(m.query) == "" {
			m.showTrending()
		}
		return m, nil

	case MsgProgressUpdate:
		if !m.generating {
			return m, nil
		}
		update := msg.data.(tasks.ProgressUpdate)
		m.loading = update.Message
		return m, m.waitForProgress()

	case MsgGenerated:
		res := msg.data.(generatedResult)
		m.generating = false
		m.loading = ""
		m.progressCh = nil
		if res.err != nil {
			m.deps.Notify.Error(services.UserMessage(res.err))
			return m, nil
		}
		m.generatedPl = res.playlist
		m.generated.Title = res.playlist.Name
		m.generated.SetItems(trackItems(res.playlist.Tracks, -1))
		m.generated.Select(0)
		m.deps.Notify.Success(fmt.Sprintf("Generated %q with %d tracks", res.playlist.Name, len(res.playlist.Tracks)))
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.forceQuit) {
		return m, tea.Quit
	}

	switch m.mode {
	case inputMode:
		return m.handleInputKeys(msg)
	case pickerMode:
		return m.handlePickerKeys(msg)
	case confirmMode:
		return m.handleConfirmKeys(msg)
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		m.setTab(Tab(s[0] - '1'))
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		m.setTab((m.tab + 1) % Tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.setTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.focus):
		if m.tab != AITab {
			m.setTab(SearchTab)
		}
		return m, m.focusInput()
	case key.Matches(msg, m.keys.playPause):
		m.deps.Player.TogglePlayback()
	case key.Matches(msg, m.keys.next):
		m.deps.Player.Advance()
	case key.Matches(msg, m.keys.prev):
		m.deps.Player.Retreat()
	case key.Matches(msg, m.keys.seekFwd):
		m.deps.Player.Seek(m.session.Progress + seekStep)
	case key.Matches(msg, m.keys.seekBack):
		m.deps.Player.Seek(max(0, m.session.Progress-seekStep))
	case key.Matches(msg, m.keys.volUp):
		m.deps.Player.SetVolume(m.session.Volume + volumeStep)
	case key.Matches(msg, m.keys.volDown):
		m.deps.Player.SetVolume(m.session.Volume - volumeStep)
	case key.Matches(msg, m.keys.shuffle):
		m.deps.Player.SetShuffleMode(!m.session.Shuffle)
	case key.Matches(msg, m.keys.repeat):
		mode := m.deps.Player.CycleRepeatMode()
		m.deps.Notify.Success("Repeat: " + mode.String())
	case key.Matches(msg, m.keys.open):
		m.openSelected()
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.openPicker()
		return m, nil
	default:
		return m.handleTabKeys(msg)
	}

	m.refreshSession()
	return m, nil
}

func (m *Model) handleTabKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.tab {
	case LibraryTab:
		if m.openPlaylist == "" {
			switch {
			case key.Matches(msg, m.keys.enter):
				if it, ok := m.playlists.SelectedItem().(playlistItem); ok {
					m.openDetail(it.playlist.Name)
				}
				return m, nil
			case key.Matches(msg, m.keys.create):
				return m, m.focusInput()
			case key.Matches(msg, m.keys.remove):
				if it, ok := m.playlists.SelectedItem().(playlistItem); ok {
					m.confirmName = it.playlist.Name
					m.mode = confirmMode
				}
				return m, nil
			}
			break
		}
		switch {
		case key.Matches(msg, m.keys.back):
			m.openPlaylist = ""
			return m, nil
		case key.Matches(msg, m.keys.enter):
			m.playFrom(m.detail)
			return m, nil
		case key.Matches(msg, m.keys.remove):
			m.removeFromPlaylist()
			return m, nil
		}

	case SearchTab:
		if key.Matches(msg, m.keys.enter) {
			m.playFrom(m.results)
			return m, nil
		}

	case QueueTab:
		if key.Matches(msg, m.keys.enter) {
			m.deps.Player.JumpTo(m.queue.Index())
			m.refreshSession()
			return m, nil
		}

	case HistoryTab:
		switch {
		case key.Matches(msg, m.keys.enter):
			m.playFrom(m.history)
			return m, nil
		case key.Matches(msg, m.keys.clear):
			m.deps.History.Clear()
			m.refreshHistory()
			m.deps.Notify.Success("History cleared")
			return m, nil
		}

	case AITab:
		switch {
		case key.Matches(msg, m.keys.enter):
			m.playFrom(m.generated)
			return m, nil
		case key.Matches(msg, m.keys.save):
			m.saveGenerated()
			return m, nil
		}
	}

	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.activeInput()

	switch msg.Type {
	case tea.KeyEsc:
		in.Blur()
		m.mode = browseMode
		return m, nil
	case tea.KeyEnter:
		in.Blur()
		m.mode = browseMode
		return m, m.submitInput()
	}

	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if m.tab == SearchTab && in.Value() != m.query {
		m.query = in.Value()
		m.deps.Search.Submit(m.query)
	}
	return m, cmd
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.mode = browseMode
	case key.Matches(msg, m.keys.up):
		if m.pickIndex > 0 {
			m.pickIndex--
		}
	case key.Matches(msg, m.keys.down):
		if m.pickIndex < len(m.picker)-1 {
			m.pickIndex++
		}
	case key.Matches(msg, m.keys.enter):
		m.mode = browseMode
		name := m.picker[m.pickIndex]
		added, err := m.deps.Library.AddTrack(name, m.pickTrack)
		switch {
		case err != nil:
			m.deps.Notify.Error(err.Error())
		case added:
			m.deps.Notify.Success(fmt.Sprintf("Added to %s", name))
		default:
			m.deps.Notify.Success(fmt.Sprintf("Already in %s", name))
		}
		m.refreshLibrary()
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.mode = browseMode
		if err := m.deps.Library.Delete(m.confirmName); err != nil {
			m.deps.Notify.Error(err.Error())
		} else {
			m.deps.Notify.Success(fmt.Sprintf("Deleted %s", m.confirmName))
		}
		m.confirmName = ""
		m.refreshLibrary()
	case key.Matches(msg, m.keys.no):
		m.mode = browseMode
		m.confirmName = ""
	}
	return m, nil
}

func (m *Model) submitInput() tea.Cmd {
	switch m.tab {
	case LibraryTab:
		name := strings.TrimSpace(m.nameInput.Value())
		m.nameInput.SetValue("")
		if err := m.deps.Library.Create(name); err != nil {
			m.deps.Notify.Error(err.Error())
			return nil
		}
		m.deps.Notify.Success(fmt.Sprintf("Created %s", name))
		m.refreshLibrary()
	case AITab:
		return m.startGenerate(m.promptInput.Value())
	}
	return nil
}

func (m *Model) setTab(t Tab) {
	m.tab = t
	switch t {
	case HistoryTab:
		m.refreshHistory()
	case LibraryTab:
		m.refreshLibrary()
	}
}

// focusInput switches to input mode for the current tab's text field.
func (m *Model) focusInput() tea.Cmd {
	in := m.activeInput()
	if in == nil {
		return nil
	}
	m.mode = inputMode
	return in.Focus()
}

func (m *Model) activeInput() *textinput.Model {
	switch m.tab {
	case LibraryTab:
		return &m.nameInput
	case SearchTab:
		return &m.searchInput
	case AITab:
		return &m.promptInput
	}
	return nil
}

func (m *Model) activeList() *list.Model {
	switch m.tab {
	case LibraryTab:
		if m.openPlaylist != "" {
			return &m.detail
		}
		return &m.playlists
	case SearchTab:
		return &m.results
	case QueueTab:
		return &m.queue
	case HistoryTab:
		return &m.history
	case AITab:
		return &m.generated
	}
	return nil
}

func (m *Model) selectedTrack() (models.Track, bool) {
	if m.tab == LibraryTab && m.openPlaylist == "" {
		return models.Track{}, false
	}
	l := m.activeList()
	if l == nil {
		return models.Track{}, false
	}
	return selectedTrack(*l)
}

// playFrom loads every track in l and starts at the selection.
func (m *Model) playFrom(l list.Model) {
	tracks := listTracks(l)
	if len(tracks) == 0 {
		return
	}
	m.deps.Player.LoadAndPlay(tracks, l.Index())
	m.refreshSession()
}

func (m *Model) openDetail(name string) {
	pl, err := m.deps.Library.Get(name)
	if err != nil {
		m.deps.Notify.Error(err.Error())
		return
	}
	m.openPlaylist = name
	m.detail.Title = pl.Name
	m.detail.SetItems(trackItems(pl.Tracks, -1))
	m.detail.Select(0)
}

func (m *Model) removeFromPlaylist() {
	t, ok := selectedTrack(m.detail)
	if !ok {
		return
	}
	if err := m.deps.Library.RemoveTrack(m.openPlaylist, t.ID); err != nil {
		m.deps.Notify.Error(err.Error())
		return
	}
	m.deps.Notify.Success(fmt.Sprintf("Removed %s", t.Title))
	idx := m.detail.Index()
	m.openDetail(m.openPlaylist)
	m.detail.Select(min(idx, len(m.detail.Items())-1))
	m.refreshLibrary()
}

func (m *Model) openPicker() {
	t, ok := m.selectedTrack()
	if !ok {
		if t, ok = m.session.CurrentTrack(); !ok {
			return
		}
	}
	m.picker = m.deps.Library.Names()
	if len(m.picker) == 0 {
		m.deps.Notify.Error("Create a playlist first")
		return
	}
	m.pickTrack = t
	m.pickIndex = 0
	m.mode = pickerMode
}

func (m *Model) openSelected() {
	t, ok := m.selectedTrack()
	if !ok {
		if t, ok = m.session.CurrentTrack(); !ok {
			return
		}
	}
	if err := openBrowser(shared.WatchURL(t.VideoID)); err != nil {
		m.deps.Notify.Error("Could not open browser")
		m.logger.Warn("open browser failed", "error", err)
	}
}

func (m *Model) saveGenerated() {
	if m.generatedPl == nil || len(m.generatedPl.Tracks) == 0 {
		return
	}
	name, err := m.deps.Library.SaveGenerated(m.generatedPl.Name, m.generatedPl.Tracks)
	if err != nil {
		m.deps.Notify.Error(err.Error())
		return
	}
	m.deps.Notify.Success(fmt.Sprintf("Saved %s to your library", name))
	m.refreshLibrary()
}

func (m *Model) showTrending() {
	m.results.Title = "Trending"
	m.results.SetItems(trackItems(m.trending, -1))
	m.results.Select(0)
}

func (m *Model) refreshSession() {
	m.session = m.deps.Player.Session()
	idx := m.queue.Index()
	m.queue.SetItems(trackItems(m.session.Queue, m.session.CurrentIndex))
	if idx >= len(m.session.Queue) || idx < 0 {
		idx = max(m.session.CurrentIndex, 0)
	}
	m.queue.Select(idx)
	if m.tab == HistoryTab {
		m.refreshHistory()
	}
}

func (m *Model) refreshHistory() {
	m.history.SetItems(trackItems(m.deps.History.Tracks(), -1))
}

func (m *Model) refreshLibrary() {
	idx := m.playlists.Index()
	playlists := m.deps.Library.Playlists()
	m.playlists.SetItems(playlistItems(playlists))
	m.playlists.Select(min(idx, max(len(playlists)-1, 0)))
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	listHeight := max(height-14, 5)
	for _, l := range []*list.Model{&m.playlists, &m.detail, &m.results, &m.queue, &m.history, &m.generated} {
		l.SetSize(width-4, listHeight)
	}
	m.searchInput.Width = max(width-10, 10)
	m.promptInput.Width = max(width-10, 10)
	m.bar.Width = max(min(width-30, 60), 10)
	m.help.Width = width
}
