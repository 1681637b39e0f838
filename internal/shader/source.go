package shader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entryPointTag prefixes the annotation that marks the next declaration as an
// entry point.
const entryPointTag = "// entry-point:"

// Source is the scanned view of one shader source file.
type Source struct {
	Path        string             // Path to the source file
	Root        string             // Base name without extension
	ModTime     time.Time          // Modification time when the file was scanned
	EntryPoints map[Stage][]string // Entry point names per stage, in file order
}

// Warning is a non-fatal problem found while scanning a source file.
type Warning struct {
	Line    int
	Message string
}

// String formats the warning with its line number.
func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// RootName returns the file's base name without its extension.
func RootName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadSource reads and scans the shader at path. A read failure is returned
// as an error; the caller treats the file as having no entry points.
func LoadSource(path string) (*Source, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("shader: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("shader: stat %s: %w", path, err)
	}

	entries, warnings, err := ScanEntryPoints(f)
	if err != nil {
		return nil, warnings, fmt.Errorf("shader: scan %s: %w", path, err)
	}

	return &Source{
		Path:        path,
		Root:        RootName(path),
		ModTime:     info.ModTime(),
		EntryPoints: entries,
	}, warnings, nil
}

// ScanEntryPoints reads shader text and collects annotated entry points.
//
// A line "// entry-point: <tag>" arms the scanner for the next non-blank line,
// which must look like "<return-type> <name>(...)". Declarations of any other
// shape drop the annotation without complaint. Unknown tags are returned as
// warnings.
func ScanEntryPoints(r io.Reader) (map[Stage][]string, []Warning, error) {
	entries := make(map[Stage][]string)
	var warnings []Warning

	var (
		pending Stage
		armed   bool
		lineNo  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if armed {
			if line == "" {
				continue
			}
			if name, ok := parseDeclName(line); ok {
				entries[pending] = append(entries[pending], name)
			}
			armed = false
			continue
		}

		tag, ok := strings.CutPrefix(line, entryPointTag)
		if !ok {
			continue
		}
		tag = strings.TrimSpace(tag)
		stage, known := ParseStage(tag)
		if !known {
			warnings = append(warnings, Warning{Line: lineNo, Message: fmt.Sprintf("unknown entry-point tag %q", tag)})
			continue
		}
		pending = stage
		armed = true
	}
	if err := sc.Err(); err != nil {
		return entries, warnings, err
	}
	return entries, warnings, nil
}

// parseDeclName extracts the function name from "<type> <name>(...)".
func parseDeclName(line string) (string, bool) {
	head, _, found := strings.Cut(line, "(")
	if !found {
		return "", false
	}
	fields := strings.Fields(head)
	if len(fields) < 2 {
		return "", false
	}
	name := fields[len(fields)-1]
	if !isIdent(name) {
		return "", false
	}
	return name, true
}

// isIdent reports whether s is a C-style identifier.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
