package task

import (
	"context"
	"fmt"
	"path/filepath"

	"assetforge/internal/pipeline"
	"assetforge/internal/sass"
)

// Flow composes the reusable pipeline steps for one task run. Each step
// helper appends the pipeline stage and records a human-readable description
// on the task, so a run can later be summarized.
//
// Flows are built inside a task definition and consumed by a single Run.
type Flow struct {
	t *Task
	p *pipeline.Pipeline
}

// Src starts a flow from the task's configured source globs.
func (t *Task) Src() *Flow {
	t.RecordStep(fmt.Sprintf("read sources %v", t.Paths.Src))
	return &Flow{t: t, p: pipeline.Src(t.root, t.Paths.Src...)}
}

// Pipe appends an arbitrary stage, recording its name.
func (f *Flow) Pipe(s pipeline.Stage) *Flow {
	f.t.RecordStep(s.Name())
	f.p.Pipe(s)
	return f
}

// Sass compiles Sass sources to CSS through the external compiler.
func (f *Flow) Sass(c *sass.Compiler) *Flow {
	f.t.RecordStep("compile sass")
	f.p.Pipe(c.Stage())
	return f
}

// SourcemapInit starts origin tracking. A no-op when the task was declared
// with sourcemaps disabled.
func (f *Flow) SourcemapInit() *Flow {
	if !f.t.sourcemaps {
		return f
	}
	f.t.RecordStep("initialize sourcemaps")
	f.p.Pipe(pipeline.SourcemapInit())
	return f
}

// Autoprefix inserts vendor-prefixed copies of known CSS declarations.
func (f *Flow) Autoprefix() *Flow {
	f.t.RecordStep("autoprefix css")
	f.p.Pipe(pipeline.Autoprefix())
	return f
}

// Minify minifies each asset according to its extension.
func (f *Flow) Minify() *Flow {
	f.t.RecordStep("minify")
	f.p.Pipe(pipeline.Minify())
	return f
}

// Concat joins all assets into one bundle. When name is empty the task's
// configured bundle name is used.
func (f *Flow) Concat(name string) *Flow {
	if name == "" {
		name = f.t.Paths.Out
	}
	if name == "" {
		name = "bundle"
	}
	f.t.RecordStep(fmt.Sprintf("concatenate into %s", name))
	f.p.Pipe(pipeline.Concat(name))
	return f
}

// SourcemapWrite emits ".map" assets and footers. A no-op when the task was
// declared with sourcemaps disabled. Must precede Save so the map files are
// written alongside their outputs.
func (f *Flow) SourcemapWrite() *Flow {
	if !f.t.sourcemaps {
		return f
	}
	f.t.RecordStep("write sourcemaps")
	f.p.Pipe(pipeline.SourcemapWrite())
	return f
}

// Save writes the assets into the task's destination directory, resolved
// against the task root.
func (f *Flow) Save() *Flow {
	dest := f.t.Paths.Dest
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(f.t.root, dest)
	}
	f.t.RecordStep(fmt.Sprintf("save to %s", f.t.Paths.Dest))
	f.p.Dest(dest)
	return f
}

// Run executes the composed pipeline.
func (f *Flow) Run(ctx context.Context) error {
	_, err := f.p.Run(ctx)
	return err
}
