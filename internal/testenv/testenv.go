// Package testenv provides environment isolation helpers for tests.
// This package intentionally has no dependencies on other internal packages
// to avoid import cycles.
package testenv

import (
	"fmt"
	"os"
	"testing"
)

// DataDirEnv is the variable config.DataDir consults first.
const DataDirEnv = "HRREVIEW_DATA_DIR"

// SetDataDir sets HRREVIEW_DATA_DIR to a temp directory to isolate tests
// from production ~/.hrreview. This is preferred over setting HOME because
// HRREVIEW_DATA_DIR takes precedence in config.DataDir(). Returns the temp
// directory path. Cleanup is automatic via t.Cleanup.
func SetDataDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv(DataDirEnv, tmpDir)
	return tmpDir
}

// RunIsolatedMain runs m with HRREVIEW_DATA_DIR pointing at a fresh temp
// directory and fails the run if anything leaked into the production data
// directory. Use it from TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(testenv.RunIsolatedMain(m)) }
func RunIsolatedMain(m *testing.M) int {
	// Snapshot prod state BEFORE overriding HRREVIEW_DATA_DIR.
	barrier := NewProdLogBarrier(DefaultProdDataDir())

	tmpDir, err := os.MkdirTemp("", "hrreview-test-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmpDir)

	origEnv, origSet := os.LookupEnv(DataDirEnv)
	defer func() {
		if origSet {
			os.Setenv(DataDirEnv, origEnv)
		} else {
			os.Unsetenv(DataDirEnv)
		}
	}()
	os.Setenv(DataDirEnv, tmpDir)
	code := m.Run()

	// Hard barrier: fail if tests polluted production files.
	if msg := barrier.Check(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
		return 1
	}
	return code
}
