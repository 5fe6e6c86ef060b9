// Package sass adapts an external Sass compiler executable into a pipeline
// stage. The compiler itself is an opaque collaborator; this package only
// manages the child process and the exit-code/stderr contract.
package sass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"assetforge/internal/pipeline"
)

// ErrCompilerNotFound indicates the configured Sass executable is not on PATH.
var ErrCompilerNotFound = errors.New("sass compiler not found")

// Compiler runs an external `sass` binary, one invocation per entrypoint.
type Compiler struct {
	// Binary is the executable name or path. Defaults to "sass".
	Binary string

	// Args are extra arguments passed before the input file.
	Args []string
}

// New creates a Compiler for the given executable.
func New(binary string) *Compiler {
	if binary == "" {
		binary = "sass"
	}
	return &Compiler{Binary: binary}
}

// Check verifies the compiler executable can be resolved.
func (c *Compiler) Check() error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%w: %q", ErrCompilerNotFound, c.Binary)
	}
	return nil
}

// Compile runs the compiler on one entrypoint and returns the produced CSS.
//
// Stdout is the compiled output; stderr is folded into the error on a
// non-zero exit. The context cancels the child process.
func (c *Compiler) Compile(ctx context.Context, entry string) ([]byte, error) {
	args := append(append([]string{}, c.Args...), "--no-source-map", entry)
	cmd := exec.CommandContext(ctx, c.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("compiling %s: %s", entry, msg)
	}
	return stdout.Bytes(), nil
}

// Stage builds the pipeline stage that compiles every Sass asset in the
// stream to CSS. Partials (files whose name starts with "_") are dropped:
// they exist to be imported, never compiled on their own. Non-Sass assets
// pass through unchanged.
func (c *Compiler) Stage() pipeline.Stage {
	return pipeline.StageFunc("sass", func(ctx context.Context, assets []*pipeline.Asset) ([]*pipeline.Asset, error) {
		if err := c.Check(); err != nil {
			return nil, err
		}

		out := make([]*pipeline.Asset, 0, len(assets))
		for _, a := range assets {
			if !isSass(a.Ext()) {
				out = append(out, a)
				continue
			}
			if strings.HasPrefix(a.Name(), "_") {
				continue
			}

			compiled, err := c.Compile(ctx, a.Path)
			if err != nil {
				return nil, err
			}
			out = append(out, &pipeline.Asset{
				Path:     cssName(a.Path),
				Base:     a.Base,
				Contents: compiled,
			})
		}
		return out, nil
	})
}

func isSass(ext string) bool {
	return ext == ".scss" || ext == ".sass"
}

func cssName(p string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + ".css"
}
