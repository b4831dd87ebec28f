package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/config"
	"github.com/hrdesk/hrreview/internal/logging"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/version"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// exitError carries an exit code for failures that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// silentExit stops cobra from printing anything on top of what the command
// already printed.
func silentExit(cmd *cobra.Command, code int) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &exitError{code: code}
}

var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}

// terminalWidth returns the width of f, or fallback when f is not a
// terminal.
func terminalWidth(f *os.File, fallback int) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// session is what a command needs to talk to the backend.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	client *backend.HTTPClient
}

// openSession loads config, applies flag overrides, and starts logging.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if serverAddr != "" {
		cfg.ServerAddr = config.NormalizeServerAddr(serverAddr)
	}

	log, err := logging.New(cfg.LogPath(), logging.Verbose(cfg.LogLevel, verbose))
	if err != nil {
		return nil, err
	}
	if cfg.Reviewer != "" {
		log = log.With(zap.String("reviewer", cfg.Reviewer))
	}
	log.Info("hrreview started",
		zap.String("version", version.Version),
		zap.String("command", cmd.Name()),
		zap.String("server", cfg.ServerAddr))

	client := backend.NewHTTPClient(cfg.ServerAddr,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithLogger(log))
	return &session{cfg: cfg, log: log, client: client}, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

func (s *session) policy() review.ResyncPolicy {
	p, err := review.ParseResyncPolicy(s.cfg.ResyncPolicy)
	if err != nil {
		// Validated at load; unreachable unless the file changed under us.
		s.log.Warn("falling back to discard resync policy", zap.Error(err))
	}
	return p
}

// reviewer builds a Reviewer that prints notices to the command's output.
func (s *session) reviewer(cmd *cobra.Command) *review.Reviewer {
	return review.New(s.client,
		review.WithLogger(s.log),
		review.WithResyncPolicy(s.policy()),
		review.WithNotifier(review.NotifierFunc(func(n review.Notice) {
			printNotice(cmd, n)
		})),
	)
}

func printNotice(cmd *cobra.Command, n review.Notice) {
	switch n.Kind {
	case review.NoticeSaved, review.NoticeInfo:
		fmt.Fprintln(cmd.OutOrStdout(), n.Message)
	default:
		w := cmd.ErrOrStderr()
		fmt.Fprintln(w, n.Message)
		if n.Err != nil {
			fmt.Fprintf(w, "  %v\n", n.Err)
		}
	}
}

// parseEmailID accepts any non-negative id; the backend assigns them and 0
// is a valid row.
func parseEmailID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid email id %q", s)
	}
	return id, nil
}

// loadRow loads the queue and returns the row for id.
func loadRow(cmd *cobra.Command, r *review.Reviewer, id int64) (review.Row, error) {
	if err := r.Load(cmd.Context()); err != nil {
		return review.Row{}, silentExit(cmd, 1)
	}
	row, ok := r.Row(id)
	if !ok {
		return review.Row{}, fmt.Errorf("email %d is not in the escalation queue", id)
	}
	return row, nil
}
