// Package ledger persists the path-to-fingerprint table used to skip
// unchanged files across runs. The on-disk format is one tab-separated
// "absolute_path<TAB>hex_fingerprint" entry per line.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Load reads the ledger at path. A missing file yields an empty ledger (the
// first run processes everything). Malformed lines are logged and skipped,
// never fatal. Paths are normalized to absolute form so lookups are stable
// regardless of the working directory.
func Load(path string, logger *slog.Logger) (map[string]string, error) {
	entries := make(map[string]string)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("ledger: store not found, all files will be processed", slog.String("path", path))
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 2 {
			logger.Warn("ledger: malformed line skipped",
				slog.Int("line", lineNo),
				slog.String("content", line))
			continue
		}
		abs, absErr := filepath.Abs(parts[0])
		if absErr != nil {
			logger.Warn("ledger: unresolvable path skipped",
				slog.Int("line", lineNo),
				slog.String("path", parts[0]))
			continue
		}
		entries[abs] = parts[1]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", path, err)
	}
	return entries, nil
}

// Save overwrites the store at path with entries, sorted by path for stable
// output. A failed save only costs reprocessing files on the next run, so
// callers log the error rather than aborting.
func Save(path string, entries map[string]string) error {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\t')
		b.WriteString(entries[p])
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("ledger: save %s: %w", path, err)
	}
	return nil
}
