package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/corey/curricula/internal/app"
	"github.com/corey/curricula/internal/domain/curriculum"
)

// exitError asks main for a specific exit code. Its message has already
// been printed when silent is set.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error { return e.err }

// ExitCode maps an Execute error to the process exit code and reports
// whether main still has to print it. Normalization failures exit 2,
// everything else 1.
func ExitCode(err error) (code int, print bool) {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code, !ee.silent
	}
	if isNormalizationError(err) {
		return 2, true
	}
	return 1, true
}

func isNormalizationError(err error) bool {
	return errors.Is(err, curriculum.ErrAmbiguousCode) || errors.Is(err, curriculum.ErrNotFound)
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the server state and returns actionable guidance
// when a bbolt open fails due to lock contention. It distinguishes three
// scenarios: server running, stale port file, and unknown lock holder.
func diagnoseDBLock(root string) string {
	paths := app.NewPaths(root)
	url, ok := serverURL(paths)

	if ok && pingServer(url) {
		return fmt.Sprintf("database is locked by the running server (%s)\n"+
			"  → use its API:     %s/api/subjects\n"+
			"  → or stop it:      Ctrl-C in the `curricula serve` terminal", url, url)
	}

	if ok {
		return fmt.Sprintf("database is locked — port file exists but the server is not responding\n"+
			"  → a previous server may have crashed\n"+
			"  → find the process:  ps aux | grep 'curricula serve'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up:          rm %s", paths.PortFile)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'curricula'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

// serverURL reads the port file a running server leaves behind.
func serverURL(paths *app.Paths) (string, bool) {
	data, err := os.ReadFile(paths.PortFile)
	if err != nil {
		return "", false
	}
	port := strings.TrimSpace(string(data))
	if port == "" {
		return "", false
	}
	return "http://localhost:" + port, true
}

// pingServer reports whether the health endpoint answers.
func pingServer(url string) bool {
	client := &http.Client{Timeout: 500 * time.Millisecond}
	resp, err := client.Get(url + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
