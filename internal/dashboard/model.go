// Package dashboard provides the Bubble Tea sales dashboard.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/refresh"
	"github.com/verte-zerg/weekboard/internal/stats"
	"github.com/verte-zerg/weekboard/internal/store"
)

const (
	viewOverview = iota
	viewLeaderboard
	viewCharts
)

const (
	plotHeight    = 8
	fallbackWidth = 80
)

// Loader fetches weeks off the event loop and publishes them to the store.
type Loader interface {
	Load(ctx context.Context) (refresh.Result, error)
	Apply(res refresh.Result)
}

// RefreshMsg asks the dashboard to start a refresh cycle, e.g. when the
// source file changes.
type RefreshMsg struct{}

type loadedMsg struct {
	res refresh.Result
	err error
}

type tickMsg time.Time

// Options configure the dashboard.
type Options struct {
	Targets  model.Targets
	Interval time.Duration
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	store  *store.Store
	loader Loader
	opts   Options
	log    *zap.Logger
	now    func() time.Time

	report    stats.Report
	hasReport bool
	errMsg    string
	status    refresh.Status

	views       []string
	activeView  int
	viewports   []viewport.Model
	leaderboard table.Model
	spinner     spinner.Model

	width  int
	height int
}

// NewModel constructs a dashboard model.
func NewModel(st *store.Store, loader Loader, opts Options, log *zap.Logger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	m := &Model{
		store:   st,
		loader:  loader,
		opts:    opts,
		log:     log,
		now:     time.Now,
		views:   []string{"Overview", "Leaderboard", "Charts"},
		spinner: sp,
	}
	m.viewports = make([]viewport.Model, len(m.views))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.leaderboard = newLeaderboardTable()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRefresh(), m.scheduleTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderViewContents()
		return m, nil
	case loadedMsg:
		m.finishRefresh(msg)
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.startRefresh(), m.scheduleTick())
	case RefreshMsg:
		return m, m.startRefresh()
	case spinner.TickMsg:
		if !m.status.Refreshing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
		return m, tea.Quit
	}
	switch msg.String() {
	case "left", "h":
		m.moveWeek(-1)
		return m, nil
	case "right", "l":
		m.moveWeek(1)
		return m, nil
	case "tab":
		m.moveView(1)
		return m, tea.ClearScreen
	case "shift+tab":
		m.moveView(-1)
		return m, tea.ClearScreen
	case "r":
		return m, m.startRefresh()
	case "g", "home":
		if m.activeView == viewLeaderboard {
			m.leaderboard.GotoTop()
		} else {
			m.viewports[m.activeView].GotoTop()
		}
		return m, nil
	case "G", "end":
		if m.activeView == viewLeaderboard {
			m.leaderboard.GotoBottom()
		} else {
			m.viewports[m.activeView].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeView == viewLeaderboard {
		m.leaderboard, cmd = m.leaderboard.Update(msg)
		return m, cmd
	}
	m.viewports[m.activeView], cmd = m.viewports[m.activeView].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// startRefresh begins a cycle. Cycles may overlap; each completion
// rebuilds the store, so the latest one wins.
func (m *Model) startRefresh() tea.Cmd {
	wasIdle := !m.status.Refreshing()
	m.status.InFlight++
	loader := m.loader
	load := func() tea.Msg {
		res, err := loader.Load(context.Background())
		return loadedMsg{res: res, err: err}
	}
	if !m.hasReport {
		m.renderViewContents()
	}
	if wasIdle {
		return tea.Batch(load, m.spinner.Tick)
	}
	return load
}

func (m *Model) finishRefresh(msg loadedMsg) {
	if m.status.InFlight > 0 {
		m.status.InFlight--
	}
	m.status.LastCycle = msg.res.CycleID
	if msg.err != nil {
		m.status.LastError = msg.err.Error()
		m.log.Warn("dashboard refresh failed", zap.Error(msg.err))
		return
	}
	m.loader.Apply(msg.res)
	m.status.LastError = ""
	m.status.LastUpdated = m.now()
	m.status.Weeks = len(msg.res.Weeks)
	m.refreshReport()
}

func (m *Model) scheduleTick() tea.Cmd {
	if m.opts.Interval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) moveWeek(delta int) {
	cur := m.store.CurrentIndex()
	if cur < 0 {
		return
	}
	if m.store.Select(cur + delta) {
		m.refreshReport()
	}
}

func (m *Model) moveView(delta int) {
	count := len(m.views)
	if count == 0 {
		return
	}
	m.activeView = (m.activeView + delta + count) % count
	if m.activeView == viewLeaderboard {
		m.leaderboard.Focus()
	} else {
		m.leaderboard.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.store, -1, m.opts.Targets)
	switch {
	case errors.Is(err, stats.ErrNoWeeks):
		m.hasReport = false
		m.errMsg = ""
	case err != nil:
		m.hasReport = false
		m.errMsg = err.Error()
	default:
		m.hasReport = true
		m.errMsg = ""
		m.report = report
	}
	m.leaderboard.SetRows(leaderboardRows(m.report.Leaderboard, m.hasReport))
	m.renderViewContents()
}

func (m *Model) renderViewContents() {
	width := m.contentWidth()
	if !m.hasReport {
		msg := m.emptyMessage()
		for i := range m.viewports {
			m.viewports[i].SetContent(msg)
		}
		return
	}
	m.viewports[viewOverview].SetContent(renderOverview(m.report, width))
	m.viewports[viewCharts].SetContent(renderCharts(m.report, width))
}

func (m *Model) emptyMessage() string {
	switch {
	case m.errMsg != "":
		return "Failed to load weeks."
	case m.status.Refreshing() && m.status.LastUpdated.IsZero() && m.status.LastError == "":
		return "Loading..."
	default:
		return "No weeks found."
	}
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return fallbackWidth
	}
	return m.width
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.status.LastError != "" || m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.leaderboard.SetWidth(m.width)
	m.leaderboard.SetHeight(max(1, bodyHeight-1))
}
