package tui

import (
	"github.com/atotto/clipboard"
	"github.com/hrdesk/hrreview/internal/review"
)

type viewKind int

const (
	viewQueue viewKind = iota
	viewDetail
	viewEditResponse // Response text modal
	viewReference    // Category → action table
	viewConfirmSave  // Ask before a save that discards other rows
	viewNotice       // Blocking notice modal
)

// helpItem is a single help-bar entry with a key label and description.
type helpItem struct {
	key  string
	desc string
}

// columnWidths stores pre-computed column widths for the queue view layout.
type columnWidths struct {
	sender   int
	subject  int
	category int
}

// queueMsg reports the end of a load started by loadQueue.
type queueMsg struct {
	seq int // fetch sequence number; stale responses (seq < model.fetchSeq) are discarded
	err error
}

// saveResultMsg reports the end of a save started by saveRow.
type saveResultMsg struct {
	emailID int64
	result  review.SaveResult
	err     error
}

// noticeMsg carries a notice emitted by the reviewer.
type noticeMsg review.Notice

type clipboardResultMsg struct {
	err  error
	view viewKind // The view where copy was triggered (for flash attribution)
}

// ClipboardWriter is an interface for clipboard operations (allows mocking in tests)
type ClipboardWriter interface {
	WriteText(text string) error
}

// realClipboard implements ClipboardWriter using the system clipboard
type realClipboard struct{}

func (r *realClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// noticeChannel delivers reviewer notices into the bubbletea loop. Notify
// never blocks; a full buffer drops the notice.
type noticeChannel chan review.Notice

func (c noticeChannel) Notify(n review.Notice) {
	select {
	case c <- n:
	default:
	}
}

// option func(*options) is a functional option for TUI.
type option func(*options)

// withClipboardWriter replaces the system clipboard.
func withClipboardWriter(c ClipboardWriter) option {
	return func(o *options) { o.clipboard = c }
}

// withConfirmDiscard toggles the confirmation before a discarding save.
func withConfirmDiscard(on bool) option {
	return func(o *options) { o.confirmDiscard = on }
}

// options holds optional overrides for the TUI model.
type options struct {
	clipboard      ClipboardWriter
	confirmDiscard bool
}
