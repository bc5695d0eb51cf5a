package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/planit/internal/config"
	"github.com/papapumpkin/planit/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View JSONL layout events for a session",
	Long: `Reads and formats the JSONL telemetry file for the latest or specified session.

Without --session, picks the most recently modified file.
With --follow (-f), watches the file for new events (like tail -f).`,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("session", "", "session ID to view (default: most recent)")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	session, _ := cmd.Flags().GetString("session")
	follow, _ := cmd.Flags().GetBool("follow")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := resolveTelemetryPath(cfg.TelemetryDir, session)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	printLines(cmd.OutOrStdout(), reader)

	if !follow {
		return nil
	}
	return tailFollow(cmd, reader, path)
}

// printLines prints every complete line available from r.
func printLines(w io.Writer, r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			printEvent(w, line)
		}
		if err != nil {
			return
		}
	}
}

// tailFollow watches the file with fsnotify and prints events as they are
// appended, until the command's context is cancelled.
func tailFollow(cmd *cobra.Command, r *bufio.Reader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			printLines(cmd.OutOrStdout(), r)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Format(time.TimeOnly)), evt.Kind}
	if evt.Body != "" {
		parts = append(parts, fmt.Sprintf("body=%s", evt.Body))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}

// resolveTelemetryPath finds the JSONL file for session in dir, or the most
// recently modified one if session is empty.
func resolveTelemetryPath(dir, session string) (string, error) {
	if session != "" {
		path := filepath.Join(dir, session+".jsonl")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("telemetry: no file for session %q: %w", session, err)
		}
		return path, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("telemetry: cannot read %s: %w", dir, err)
	}

	var newest string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = e.Name(), info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("telemetry: no JSONL files in %s", dir)
	}
	return filepath.Join(dir, newest), nil
}
