package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/stateflow"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
)

// noticeBuffer bounds how many reviewer notices may wait for the UI.
const noticeBuffer = 32

// TUI styles using AdaptiveColor for light/dark terminal support.
// Light colors are chosen for dark-on-light terminals; Dark colors for light-on-dark.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "125", Dark: "205"}) // Magenta/Pink

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"}) // Gray

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "153", Dark: "24"}) // Light blue background

	dirtyStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "226"}) // Yellow/Gold
	learnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"})   // Green
	humanStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "166", Dark: "208"}) // Orange
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}).Bold(true)
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"}) // Green
	labelStyle    = lipgloss.NewStyle().Bold(true)
	editableStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "33"}) // Blue

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "125", Dark: "205"}).
			Padding(1, 2)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"}) // Gray (matches status/scroll text)
	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "248", Dark: "240"}) // Dimmer gray for descriptions
)

// reflowHelpRows redistributes items across rows so that when rendered
// as an aligned table (columns sized to the widest cell), the result
// fits within width. Each cell's visible width is key + space + desc,
// and non-first columns add 2 chars (▕ border + padding). If width is
// <= 0, rows are returned unchanged.
func reflowHelpRows(rows [][]helpItem, width int) [][]helpItem {
	if width <= 0 {
		return rows
	}

	maxItemsPerRow := 0
	for _, row := range rows {
		maxItemsPerRow = max(maxItemsPerRow, len(row))
	}

	// Try ncols from max down to 1. For each candidate, chunk every
	// input row into sub-rows of at most ncols items, compute aligned
	// column widths, and check if the total fits within width.
	for ncols := maxItemsPerRow; ncols >= 1; ncols-- {
		var candidate [][]helpItem
		for _, row := range rows {
			for i := 0; i < len(row); i += ncols {
				end := min(i+ncols, len(row))
				candidate = append(candidate, row[i:end])
			}
		}

		colW := make([]int, ncols)
		for _, crow := range candidate {
			for c, item := range crow {
				colW[c] = max(colW[c], helpCellWidth(item))
			}
		}

		total := 0
		for c, w := range colW {
			total += w
			if c > 0 {
				total += 2 // ▕ + padding
			}
		}

		if total <= width {
			return candidate
		}
	}

	// Fallback: one item per row.
	var result [][]helpItem
	for _, row := range rows {
		for _, item := range row {
			result = append(result, []helpItem{item})
		}
	}
	return result
}

// helpCellWidth returns the visible width of a help item (key + space +
// desc, or just key when desc is empty).
func helpCellWidth(item helpItem) int {
	w := runewidth.StringWidth(item.key)
	if item.desc != "" {
		w += 1 + runewidth.StringWidth(item.desc)
	}
	return w
}

// renderHelpTable renders helpItem entries as an aligned table.
// Keys and descriptions are two-tone gray, separated by a thin ▕ border
// that is hidden for column 0 and trailing empty cells.
func renderHelpTable(rows [][]helpItem, width int) string {
	rows = reflowHelpRows(rows, width)
	if len(rows) == 0 {
		return ""
	}

	borderColor := lipgloss.AdaptiveColor{Light: "248", Dark: "242"}
	cellStyle := lipgloss.NewStyle()
	// PaddingLeft gaps the ▕ from cell text.
	cellWithBorder := lipgloss.NewStyle().
		PaddingLeft(1).
		Border(lipgloss.Border{Left: "▕"}, false, false, false, true).
		BorderForeground(borderColor)

	maxCols := 0
	for _, row := range rows {
		maxCols = max(maxCols, len(row))
	}

	colMinW := make([]int, maxCols)
	for _, row := range rows {
		for c, item := range row {
			colMinW[c] = max(colMinW[c], helpCellWidth(item))
		}
	}

	// Track which cells have content for conditional borders.
	empty := make([][]bool, len(rows))

	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			minW := 0
			if col < len(colMinW) {
				minW = colMinW[col]
			}
			if col == 0 || (row < len(empty) && col < len(empty[row]) && empty[row][col]) {
				return cellStyle.Width(minW)
			}
			return cellWithBorder.Width(minW + 2) // +2 for ▕ border + padding
		}).
		Wrap(false)

	for ri, row := range rows {
		styled := make([]string, maxCols)
		empty[ri] = make([]bool, maxCols)
		for i, item := range row {
			if item.desc != "" {
				styled[i] = helpKeyStyle.Render(item.key) + " " + helpDescStyle.Render(item.desc)
			} else {
				styled[i] = helpKeyStyle.Render(item.key)
			}
		}
		for i := len(row); i < maxCols; i++ {
			empty[ri][i] = true
		}
		t = t.Row(styled...)
	}

	return t.Render()
}

type model struct {
	serverAddr string
	reviewer   *review.Reviewer
	actions    *stateflow.Table
	notices    noticeChannel

	rows         []review.Row // Snapshot of the reviewer queue, refreshed after every change
	loaded       bool         // true after the first successful load
	selectedIdx  int
	selectedID   int64 // Track selected row by email ID to keep position across reloads
	hasSelection bool
	currentView  viewKind
	width        int
	height       int
	err          error // Last load error, shown in the status line

	loading  bool
	fetchSeq int // incremented per reload; stale load results are discarded
	saving   bool
	savingID int64

	confirmDiscard bool

	// Detail view state
	bodyView       viewport.Model
	detailFromView viewKind

	// Response modal state
	responseInput textarea.Model
	editID        int64
	editFromView  viewKind

	// Confirm-save modal state
	confirmID       int64
	confirmDirty    []int64
	confirmFromView viewKind

	// Blocking notices waiting to be acknowledged, oldest first
	pendingNotices []review.Notice
	noticeFromView viewKind

	// Reference view state
	refSelectedIdx int
	refFromView    viewKind

	lastSave *review.SaveResult

	// Flash message (temporary status message shown briefly)
	flashMessage   string
	flashExpiresAt time.Time
	flashView      viewKind // View where flash was triggered (only show in same view)

	clipboard ClipboardWriter
}

func newModel(serverAddr string, r *review.Reviewer, notices noticeChannel, opts ...option) model {
	opt := options{confirmDiscard: true}
	for _, o := range opts {
		o(&opt)
	}
	cb := opt.clipboard
	if cb == nil {
		cb = &realClipboard{}
	}

	ta := textarea.New()
	ta.Placeholder = "Type the reply to the employee..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(76)
	ta.SetHeight(6)
	// Enter submits the modal; ctrl+j inserts a newline.
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")

	return model{
		serverAddr:     serverAddr,
		reviewer:       r,
		actions:        stateflow.New(),
		notices:        notices,
		selectedIdx:    -1,
		currentView:    viewQueue,
		width:          80, // sensible defaults until we get WindowSizeMsg
		height:         24,
		loading:        true, // Init() calls loadQueue, so mark as loading
		confirmDiscard: opt.confirmDiscard,
		bodyView:       viewport.New(76, 10),
		responseInput:  ta,
		clipboard:      cb,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.WindowSize(), // request initial window size
		m.loadQueue(),
		waitForNotice(m.notices),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case queueMsg:
		return m.handleQueueMsg(msg)
	case saveResultMsg:
		return m.handleSaveResultMsg(msg)
	case noticeMsg:
		return m.handleNoticeMsg(msg)
	case clipboardResultMsg:
		return m.handleClipboardResultMsg(msg)
	}
	if m.currentView == viewEditResponse {
		// Cursor blink and other textarea internals.
		var cmd tea.Cmd
		m.responseInput, cmd = m.responseInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case viewNotice:
		return m.renderNoticeView()
	case viewConfirmSave:
		return m.renderConfirmSaveView()
	case viewEditResponse:
		return m.renderEditResponseView()
	case viewReference:
		return m.renderReferenceView()
	case viewDetail:
		if _, ok := m.selectedRow(); ok {
			return m.renderDetailView()
		}
	}
	return m.renderQueueView()
}

// Config holds resolved parameters for running the TUI.
type Config struct {
	ServerAddr     string
	Client         backend.Client
	Policy         review.ResyncPolicy
	ConfirmDiscard bool
	Logger         *zap.Logger
}

// Run starts the interactive TUI.
func Run(ctx context.Context, cfg Config) error {
	notices := make(noticeChannel, noticeBuffer)
	r := review.New(cfg.Client,
		review.WithNotifier(notices),
		review.WithLogger(cfg.Logger),
		review.WithResyncPolicy(cfg.Policy),
	)
	// Query the background once, before bubbletea puts the terminal in raw
	// mode; AdaptiveColor lookups during rendering would block on it.
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())

	p := tea.NewProgram(
		newModel(cfg.ServerAddr, r, notices, withConfirmDiscard(cfg.ConfirmDiscard)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
