// Package ingredient declares the built-in tasks used when a project has no
// buildfile: one task per build concern, each a linear composition of
// pipeline steps over the configured path pair. Every ingredient goes
// through the Task abstraction so run, watch and list treat them uniformly.
package ingredient

import (
	"context"

	"assetforge/internal/config"
	"assetforge/internal/notify"
	"assetforge/internal/sass"
	"assetforge/internal/task"
)

// Register declares every built-in ingredient into the registry.
func Register(reg *task.Registry, cfg config.Settings, compiler *sass.Compiler, notifier notify.Notifier) {
	Styles(reg, cfg, compiler, notifier)
	Scripts(reg, cfg, notifier)
}

// Styles declares the stylesheet task: compile Sass, track sourcemaps,
// autoprefix, minify in production, and save with sourcemaps.
func Styles(reg *task.Registry, cfg config.Settings, compiler *sass.Compiler, notifier notify.Notifier) *task.Task {
	t := task.New("styles",
		task.WithCategory("stylesheets"),
		task.WithPaths(cfg.Styles),
		task.WithNotifier(notifier),
		task.WithSourcemaps(cfg.Sourcemaps),
		task.WithRoot(cfg.Root),
		task.WithDefinition(func(ctx context.Context, t *task.Task) error {
			flow := t.Src().
				Sass(compiler).
				SourcemapInit().
				Autoprefix()
			if cfg.Production {
				flow = flow.Minify()
			}
			return flow.SourcemapWrite().Save().Run(ctx)
		}),
	)
	t.Watch(cfg.Styles.WatchGlobs()...)
	reg.Add(t)
	return t
}

// Scripts declares the JavaScript task: bundle sources in deterministic
// order, track sourcemaps, minify in production, and save with sourcemaps.
func Scripts(reg *task.Registry, cfg config.Settings, notifier notify.Notifier) *task.Task {
	t := task.New("scripts",
		task.WithCategory("scripts"),
		task.WithPaths(cfg.Scripts),
		task.WithNotifier(notifier),
		task.WithSourcemaps(cfg.Sourcemaps),
		task.WithRoot(cfg.Root),
		task.WithDefinition(func(ctx context.Context, t *task.Task) error {
			flow := t.Src().
				SourcemapInit().
				Concat("")
			if cfg.Production {
				flow = flow.Minify()
			}
			return flow.SourcemapWrite().Save().Run(ctx)
		}),
	)
	t.Watch(cfg.Scripts.WatchGlobs()...)
	reg.Add(t)
	return t
}
