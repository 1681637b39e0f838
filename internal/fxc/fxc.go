// Package fxc runs an fxc-compatible HLSL compiler as an external process.
package fxc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/papapumpkin/fxwatch/internal/shader"
)

// Invoker runs the compiler binary once per job.
type Invoker struct {
	CompilerPath string
	PrefixArgs   []string  // Arguments placed before the generated ones, e.g. "fxc.exe" when running through wine
	Verbose      bool
	Log          io.Writer // Destination for verbose traces; os.Stderr when nil
}

// NewInvoker returns an Invoker for the compiler at path.
func NewInvoker(path string, prefixArgs []string, verbose bool) *Invoker {
	return &Invoker{CompilerPath: path, PrefixArgs: prefixArgs, Verbose: verbose}
}

// buildArgs constructs the compiler command line for a job.
func buildArgs(job shader.Job) []string {
	args := []string{
		"/nologo",
		"/T" + job.Profile,
	}
	if job.Debug {
		args = append(args, "/Od", "/Zi")
	} else {
		args = append(args, "/O3")
	}
	args = append(args,
		"/E"+job.Entry,
		"/Fo"+job.ObjectPath,
		"/Fc"+job.AsmPath,
		job.Source,
	)
	return args
}

// Compile runs the compiler for job and waits for it to exit. A nonzero exit
// is reported in the Result, not as an error; errors mean the compiler could
// not be run at all or ctx was cancelled.
func (inv *Invoker) Compile(ctx context.Context, job shader.Job) (shader.Result, error) {
	args := append(append([]string{}, inv.PrefixArgs...), buildArgs(job)...)

	cmd := exec.CommandContext(ctx, inv.CompilerPath, args...)
	cmd.SysProcAttr = sessionAttr()

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if inv.Verbose {
		fmt.Fprintf(inv.log(), "[fxc] running: %s %s\n", inv.CompilerPath, strings.Join(args, " "))
	}

	start := time.Now()
	err := cmd.Run()
	res := shader.Result{Output: out.String(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		return res, nil
	}
	return res, fmt.Errorf("fxc: run %s: %w", inv.CompilerPath, err)
}

// Validate checks that the compiler binary can be found.
func (inv *Invoker) Validate() error {
	path, err := exec.LookPath(inv.CompilerPath)
	if err != nil {
		return fmt.Errorf("compiler not found at %q: %w", inv.CompilerPath, err)
	}
	if inv.Verbose {
		fmt.Fprintf(inv.log(), "[fxc] resolved: %s\n", path)
	}
	return nil
}

func (inv *Invoker) log() io.Writer {
	if inv.Log != nil {
		return inv.Log
	}
	return os.Stderr
}
