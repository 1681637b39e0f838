package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/fxwatch/internal/config"
	"github.com/papapumpkin/fxwatch/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View the JSONL telemetry event stream",
	Long: `Reads and formats the JSONL telemetry file written by watch and build.

Without --file, reads the file named by the telemetry_file setting.
With --follow (-f), watches the file for new events (like tail -f).`,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("file", "", "telemetry file to read (default: telemetry_file setting)")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	telemetryCmd.Flags().String("session", "", "only show events from this session")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	session, _ := cmd.Flags().GetString("session")

	path, err := resolveTelemetryPath(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	w := cmd.OutOrStdout()
	reader := bufio.NewReader(f)
	if err := printAvailable(w, reader, session); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}
	return tailFollow(w, reader, path, session)
}

// printAvailable prints every complete line currently readable.
func printAvailable(w io.Writer, reader *bufio.Reader, session string) error {
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			printEvent(w, line, session)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(w io.Writer, reader *bufio.Reader, path, session string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for event := range watcher.Events {
		if !event.Has(fsnotify.Write) {
			continue
		}
		if err := printAvailable(w, reader, session); err != nil {
			return fmt.Errorf("telemetry: read %s: %w", path, err)
		}
	}
	return nil
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Events from other sessions are skipped when session is set.
func printEvent(w io.Writer, line, session string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if session != "" && !strings.HasPrefix(evt.SessionID, session) {
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Format(time.TimeOnly)), evt.Kind}
	if evt.SessionID != "" {
		parts = append(parts, fmt.Sprintf("session=%s", shortID(evt.SessionID)))
	}
	if evt.Shader != "" {
		parts = append(parts, fmt.Sprintf("shader=%s", evt.Shader))
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

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTelemetryPath returns the --file flag or the configured telemetry file.
func resolveTelemetryPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return path, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TelemetryFile == "" {
		return "", errors.New("telemetry: no telemetry_file configured; pass --file")
	}
	return cfg.TelemetryFile, nil
}
