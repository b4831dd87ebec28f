package testenv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFile    = "hrreview.log"
	configFile = "config.toml"
)

// ProdLogBarrier records the state of the production data directory
// before tests run, and provides a Check method that fails hard if any
// test activity leaked into it.
type ProdLogBarrier struct {
	realDataDir string
	// Byte offset of hrreview.log at barrier creation time.
	logSize int64
	// Snapshot of config.toml at barrier creation time.
	configExisted bool
	configSize    int64
	configMtime   time.Time
}

// DefaultProdDataDir returns the default production data directory
// (~/.hrreview). This is resolved from the user's home directory,
// ignoring HRREVIEW_DATA_DIR so it always points to the real dir.
func DefaultProdDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hrreview")
}

// NewProdLogBarrier snapshots the current production data directory
// state. Call Check() after m.Run() to detect test pollution.
// realDataDir should be resolved BEFORE HRREVIEW_DATA_DIR is overridden.
func NewProdLogBarrier(realDataDir string) *ProdLogBarrier {
	b := &ProdLogBarrier{realDataDir: realDataDir}
	b.logSize = fileSize(filepath.Join(realDataDir, logFile))
	if info, err := os.Stat(filepath.Join(realDataDir, configFile)); err == nil {
		b.configExisted = true
		b.configSize = info.Size()
		b.configMtime = info.ModTime()
	}
	return b
}

// Check verifies no test pollution reached production files.
// Returns a non-empty error message if pollution is detected.
func (b *ProdLogBarrier) Check() string {
	var violations []string

	// 1. config.toml must not be created, rewritten or removed.
	configPath := filepath.Join(b.realDataDir, configFile)
	if info, err := os.Stat(configPath); err == nil {
		if !b.configExisted {
			violations = append(violations,
				"test wrote config.toml to prod data dir")
		} else if info.Size() != b.configSize ||
			!info.ModTime().Equal(b.configMtime) {
			violations = append(violations,
				fmt.Sprintf(
					"test modified config.toml in prod data dir"+
						" (size %d→%d, mtime %s→%s)",
					b.configSize, info.Size(),
					b.configMtime.Format(time.RFC3339Nano),
					info.ModTime().Format(time.RFC3339Nano),
				),
			)
		}
	} else if b.configExisted {
		violations = append(violations,
			"test deleted config.toml from prod data dir")
	}

	// 2. Scan new lines in hrreview.log for test markers.
	if markers := b.scanNewLines(
		filepath.Join(b.realDataDir, logFile),
		b.logSize,
	); len(markers) > 0 {
		violations = append(violations,
			fmt.Sprintf(
				"test pollution in prod %s: %s",
				logFile, strings.Join(markers, "; "),
			),
		)
	}

	if len(violations) == 0 {
		return ""
	}
	return "PROD LOG BARRIER FAILED:\n  " +
		strings.Join(violations, "\n  ")
}

// scanNewLines reads lines appended after startOffset and returns
// descriptions of any lines that look like test pollution.
func (b *ProdLogBarrier) scanNewLines(
	path string, startOffset int64,
) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil // file gone or unreadable, not our problem
	}
	defer f.Close()

	if _, err := f.Seek(startOffset, 0); err != nil {
		return nil
	}

	var markers []string
	seen := map[string]bool{}
	scanner := bufio.NewScanner(f)
	// 1MB buffer to handle large log lines without silent truncation.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, m := range testMarkers(scanner.Text()) {
			if !seen[m] {
				seen[m] = true
				markers = append(markers, m)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		markers = append(markers,
			fmt.Sprintf("scan error (barrier may be incomplete): %v", err))
	}
	return markers
}

// testMarkers returns marker descriptions if the line looks like
// test pollution.
func testMarkers(line string) []string {
	var out []string

	// Explicit test event markers
	if strings.Contains(line, `"event":"test"`) {
		out = append(out, `event:"test" entry`)
	}

	// dev build start
	if strings.Contains(line, `"version":"dev"`) &&
		strings.Contains(line, "hrreview started") {
		out = append(out, `hrreview started with version:"dev"`)
	}

	return out
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
