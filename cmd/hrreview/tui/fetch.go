package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// loadQueue reloads the escalation queue through the reviewer. The
// reviewer applies the response itself; the message only tells the
// model to refresh its snapshot.
func (m model) loadQueue() tea.Cmd {
	seq := m.fetchSeq
	r := m.reviewer
	return func() tea.Msg {
		err := r.Load(context.Background())
		return queueMsg{seq: seq, err: err}
	}
}

// waitForNotice blocks until the reviewer emits a notice.
func waitForNotice(ch noticeChannel) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}
