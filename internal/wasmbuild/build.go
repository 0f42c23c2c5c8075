// Package wasmbuild compiles the browser client to WebAssembly with either the
// Go toolchain or TinyGo, and gathers the runtime support files it needs.
package wasmbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Compilers
const (
	CompilerGo     = "go"
	CompilerTinyGo = "tinygo"
)

// ErrWasmExecNotFound is returned when no wasm_exec.js ships with the compiler
var ErrWasmExecNotFound = errors.New("wasm_exec.js not found")

// Options configures a client build
type Options struct {
	// Compiler is CompilerGo or CompilerTinyGo, default CompilerGo
	Compiler string
	// Main is the package to build, e.g. ./app/client
	Main string
	// Output is the path of the .wasm file
	Output string
	// Optimize strips debug info and favors size
	Optimize bool
	// Dir is the working directory of the compiler, default the current one
	Dir string
}

func (o Options) withDefaults() Options {
	if o.Compiler == "" {
		o.Compiler = CompilerGo
	}
	if o.Main == "" {
		o.Main = "./app/client"
	}
	if o.Output == "" {
		o.Output = filepath.Join("public", "app.wasm")
	}
	return o
}

// Command returns the compiler invocation for the options without running it
func Command(ctx context.Context, o Options) (*exec.Cmd, error) {
	o = o.withDefaults()

	var cmd *exec.Cmd
	switch o.Compiler {
	case CompilerGo:
		args := []string{"build", "-o", o.Output}
		if o.Optimize {
			args = append(args, "-trimpath", "-ldflags=-s -w")
		}
		args = append(args, o.Main)
		cmd = exec.CommandContext(ctx, "go", args...)
		cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	case CompilerTinyGo:
		args := []string{"build", "-o", o.Output, "-target", "wasm"}
		if o.Optimize {
			args = append(args, "-no-debug", "-opt", "z")
		} else {
			args = append(args, "-opt", "2")
		}
		args = append(args, o.Main)
		cmd = exec.CommandContext(ctx, "tinygo", args...)
	default:
		return nil, fmt.Errorf("unknown compiler %q", o.Compiler)
	}
	cmd.Dir = o.Dir
	return cmd, nil
}

// Build compiles the client. The compiler output is included in the error.
func Build(ctx context.Context, o Options) error {
	o = o.withDefaults()
	cmd, err := Command(ctx, o)
	if err != nil {
		return err
	}

	out := o.Output
	if o.Dir != "" && !filepath.IsAbs(out) {
		out = filepath.Join(o.Dir, out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s build failed: %w\nOutput: %s", o.Compiler, err, output)
	}
	return nil
}

// Root asks the compiler for its installation directory
func Root(ctx context.Context, compiler string) (string, error) {
	var cmd *exec.Cmd
	switch compiler {
	case CompilerGo, "":
		cmd = exec.CommandContext(ctx, "go", "env", "GOROOT")
	case CompilerTinyGo:
		cmd = exec.CommandContext(ctx, "tinygo", "env", "TINYGOROOT")
	default:
		return "", fmt.Errorf("unknown compiler %q", compiler)
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to locate %s root: %w", compiler, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// FindWasmExec returns the wasm_exec.js that matches the compiler under root
func FindWasmExec(compiler, root string) (string, error) {
	var candidates []string
	if compiler == CompilerTinyGo {
		candidates = []string{filepath.Join(root, "targets", "wasm_exec.js")}
	} else {
		// Go 1.24 moved the file from misc/wasm to lib/wasm
		candidates = []string{
			filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
			filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
		}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w under %s", ErrWasmExecNotFound, root)
}

// CopyWasmExec copies the compiler's wasm_exec.js into dir
func CopyWasmExec(ctx context.Context, compiler, dir string) error {
	root, err := Root(ctx, compiler)
	if err != nil {
		return err
	}
	src, err := FindWasmExec(compiler, root)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read wasm_exec.js: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "wasm_exec.js"), content, 0644)
}
