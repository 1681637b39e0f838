// Package ui renders fxwatch's console output: progress lines during a
// build pass, scan notices, and the tables shown by the status and history
// commands. All output goes to a single writer, stderr by default.
package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/papapumpkin/fxwatch/internal/build"
	"github.com/papapumpkin/fxwatch/internal/shader"
)

// Printer writes styled progress messages. It implements the reporter
// interfaces of the build and watch packages.
type Printer struct {
	w       io.Writer
	verbose bool
}

// New returns a Printer writing to stderr.
func New(verbose bool) *Printer {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter returns a Printer writing to w.
func NewWithWriter(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

// Banner prints the startup header naming the watched and output directories.
func (p *Printer) Banner(shaderDir, outDir string) {
	fmt.Fprintln(p.w, styleBanner.Render("fxwatch")+" "+styleMuted.Render(shaderDir+" → "+outDir))
}

// Info prints a de-emphasized informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, styleMuted.Render(msg))
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, styleFailed.Render("error: ")+msg)
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, styleWarn.Render(iconWarning+" "+msg))
}

// Debug prints msg only in verbose mode.
func (p *Printer) Debug(msg string) {
	if !p.verbose {
		return
	}
	fmt.Fprintln(p.w, styleMuted.Render("[debug] "+msg))
}

// PassStarted announces a build pass. Only printed in verbose mode; a quiet
// pass with nothing to do produces no output.
func (p *Printer) PassStarted(shaders int) {
	p.Debug(fmt.Sprintf("pass over %d shader(s)", shaders))
}

// ShaderSuppressed notes a shader skipped because it is still broken.
func (p *Printer) ShaderSuppressed(path string) {
	p.Debug(fmt.Sprintf("%s unchanged since last failure, skipping", path))
}

// Compiling announces a compile job.
func (p *Printer) Compiling(job shader.Job) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		styleWorking.Render(iconWorking),
		job.Label(),
		styleMuted.Render("("+job.Profile+variantTag(job)+")"))
}

// CompileDone reports a successful compile.
func (p *Printer) CompileDone(job shader.Job, res shader.Result) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		styleDone.Render(iconDone),
		job.Label(),
		styleMuted.Render(res.Duration.Round(time.Millisecond).String()))
}

// CompileFailed reports a failed compile together with the compiler output.
func (p *Printer) CompileFailed(job shader.Job, res shader.Result, err error) {
	if err != nil {
		fmt.Fprintf(p.w, "%s %s %s\n", styleFailed.Render(iconFailed), job.Label(), styleFailed.Render(err.Error()))
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", styleFailed.Render(iconFailed), job.Label(),
		styleFailed.Render(fmt.Sprintf("exit %d", res.ExitCode)))
	for _, line := range strings.Split(strings.TrimRight(res.Output, "\r\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(p.w, "    "+strings.TrimRight(line, "\r"))
	}
}

// HeaderWritten reports a regenerated constant-buffer header.
func (p *Printer) HeaderWritten(path string, buffers int) {
	fmt.Fprintf(p.w, "%s %s %s\n", styleDone.Render(iconHeader), filepath.Base(path),
		styleMuted.Render(fmt.Sprintf("%d buffer(s)", buffers)))
}

// PassFinished prints a one-line summary when the pass did any work.
func (p *Printer) PassFinished(sum build.Summary) {
	if sum.Compiled == 0 && sum.Failed == 0 {
		p.Debug("everything up to date")
		return
	}
	line := fmt.Sprintf("%s compiled %d, failed %d, headers %d in %s", iconSeparator,
		sum.Compiled, sum.Failed, sum.HeadersWritten, sum.Duration.Round(time.Millisecond))
	if sum.Failed > 0 {
		fmt.Fprintln(p.w, styleFailed.Render(line))
		return
	}
	fmt.Fprintln(p.w, styleDone.Render(line))
}

// ShaderAdded reports a newly discovered shader.
func (p *Printer) ShaderAdded(path string) {
	fmt.Fprintln(p.w, styleDone.Render(iconAdded)+" "+path)
}

// ShaderRemoved reports a shader that disappeared.
func (p *Printer) ShaderRemoved(path string) {
	fmt.Fprintln(p.w, styleWarn.Render(iconRemoved)+" "+path)
}

// ScanWarning reports a problem found while scanning annotations.
func (p *Printer) ScanWarning(path string, w shader.Warning) {
	p.Warn(fmt.Sprintf("%s: %s", path, w))
}

// ValidateResult prints the outcome of the validate command.
func (p *Printer) ValidateResult(problems []string) {
	if len(problems) == 0 {
		fmt.Fprintln(p.w, styleDone.Render(iconDone+" configuration OK"))
		return
	}
	fmt.Fprintln(p.w, styleFailed.Render(fmt.Sprintf("%s %d problem(s):", iconFailed, len(problems))))
	for _, prob := range problems {
		fmt.Fprintln(p.w, "  "+styleFailed.Render("•")+" "+prob)
	}
}

func variantTag(job shader.Job) string {
	if job.Debug {
		return ", debug"
	}
	return ""
}
