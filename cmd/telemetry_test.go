package cmd

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestPrintEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		session string
		want    string
	}{
		{
			name: "compile failure with data",
			line: `{"ts":"2025-01-01T10:11:12Z","kind":"compile_failed","session":"0123456789abcdef","shader":"shaders/lit.hlsl","data":{"exit_code":1,"entry":"PsMain"}}`,
			want: "[10:11:12] compile_failed session=01234567 shader=shaders/lit.hlsl entry=PsMain exit_code=1\n",
		},
		{
			name: "string data",
			line: `{"ts":"2025-01-01T10:11:12Z","kind":"scan_warning","data":"line 3: unknown tag"}`,
			want: "[10:11:12] scan_warning \"line 3: unknown tag\"\n",
		},
		{
			name: "not json",
			line: "garbage",
			want: "??? garbage\n",
		},
		{
			name:    "other session filtered",
			line:    `{"ts":"2025-01-01T10:11:12Z","kind":"pass_start","session":"aaaa"}`,
			session: "bbbb",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			printEvent(&buf, tt.line, tt.session)
			if buf.String() != tt.want {
				t.Errorf("printEvent() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintAvailable(t *testing.T) {
	t.Parallel()

	input := `{"ts":"2025-01-01T00:00:00Z","kind":"pass_start"}` + "\n\n" +
		`{"ts":"2025-01-01T00:00:01Z","kind":"pass_done"}` + "\n"
	var buf bytes.Buffer
	if err := printAvailable(&buf, bufio.NewReader(strings.NewReader(input)), ""); err != nil {
		t.Fatalf("printAvailable: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[1], "pass_done") {
		t.Errorf("second line = %q", lines[1])
	}
}
