package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/fxwatch/internal/build"
	"github.com/papapumpkin/fxwatch/internal/failcache"
	"github.com/papapumpkin/fxwatch/internal/history"
	"github.com/papapumpkin/fxwatch/internal/shader"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		}).
		Headers(headers...)
}

// StatusTable renders the build plan for every tracked shader, followed by
// the recorded failures. Times are shown relative to now.
func StatusTable(plans []build.ShaderPlan, failures []failcache.Record, now time.Time) string {
	if len(plans) == 0 {
		return styleMuted.Render("no shaders found") + "\n"
	}

	t := newTable("shader", "entry points", "state", "changed")
	for _, pl := range plans {
		changed := ""
		if !pl.Effective.Time.IsZero() {
			changed = humanize.RelTime(pl.Effective.Time, now, "ago", "from now")
		}
		t.Row(filepath.Base(pl.Source.Path), entryList(pl.Source), planState(pl), changed)
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(failures) > 0 {
		b.WriteString(styleHeading.Render("recorded failures") + "\n")
		for _, r := range failures {
			fmt.Fprintf(&b, "  %s %s %s %s\n",
				styleFailed.Render(iconFailed),
				r.Shader,
				styleMuted.Render("at "+r.Entry),
				styleMuted.Render(humanize.RelTime(r.FailedAt, now, "ago", "from now")))
		}
	}
	return b.String()
}

func planState(pl build.ShaderPlan) string {
	switch {
	case pl.Err != nil:
		return styleFailed.Render(iconFailed + " unreadable")
	case pl.Suppressed:
		return styleWarn.Render(iconSkipped + " failing")
	case pl.Effective.Unbounded:
		return styleWarn.Render(fmt.Sprintf("%d stale, missing include", len(pl.Stale)))
	case len(pl.Stale) > 0:
		return styleWorking.Render(fmt.Sprintf("%d stale", len(pl.Stale)))
	}
	return styleDone.Render(iconDone + " up to date")
}

func entryList(src *shader.Source) string {
	var parts []string
	for _, st := range shader.Stages() {
		for _, e := range src.EntryPoints[st] {
			parts = append(parts, string(st)+":"+e)
		}
	}
	if len(parts) == 0 {
		return styleMuted.Render("none")
	}
	return strings.Join(parts, " ")
}

// HistoryTable renders recent compiles, newest first, with times relative to
// now.
func HistoryTable(rows []history.Compile, now time.Time) string {
	if len(rows) == 0 {
		return styleMuted.Render("no compiles recorded") + "\n"
	}

	t := newTable("when", "shader", "entry", "profile", "result", "took")
	for _, c := range rows {
		entry := c.Entry
		if c.Debug {
			entry += " (debug)"
		}
		result := styleDone.Render(iconDone + " ok")
		if !c.OK() {
			result = styleFailed.Render(fmt.Sprintf("%s exit %d", iconFailed, c.ExitCode))
		}
		t.Row(
			humanize.RelTime(c.StartedAt, now, "ago", "from now"),
			filepath.Base(c.Shader),
			entry,
			c.Stage,
			result,
			c.Duration.Round(time.Millisecond).String(),
		)
	}
	return t.String() + "\n"
}

// HeadersTable renders the generated headers known to the history store.
func HeadersTable(headers []history.Header, now time.Time) string {
	if len(headers) == 0 {
		return styleMuted.Render("no headers recorded") + "\n"
	}
	t := newTable("header", "shader", "buffers", "written")
	for _, h := range headers {
		t.Row(
			filepath.Base(h.Path),
			filepath.Base(h.Shader),
			humanize.Comma(int64(h.Buffers)),
			humanize.RelTime(h.WrittenAt, now, "ago", "from now"),
		)
	}
	return t.String() + "\n"
}

// FailureOutput renders the compiler output of failed compiles under a
// heading per compile.
func FailureOutput(rows []history.Compile) string {
	var b strings.Builder
	for _, c := range rows {
		if c.OK() || strings.TrimSpace(c.Output) == "" {
			continue
		}
		b.WriteString(styleBold.Render(fmt.Sprintf("%s %s", filepath.Base(c.Shader), c.Entry)) + "\n")
		for _, line := range strings.Split(strings.TrimRight(c.Output, "\r\n"), "\n") {
			b.WriteString("    " + strings.TrimRight(line, "\r") + "\n")
		}
	}
	return b.String()
}
