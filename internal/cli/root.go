package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"assetforge/internal/config"
	"assetforge/internal/ingredient"
	"assetforge/internal/notify"
	"assetforge/internal/obs"
	"assetforge/internal/sass"
	"assetforge/internal/script"
	"assetforge/internal/task"
)

// App carries the state shared by every subcommand: resolved settings, the
// task registry, and the collaborators tasks run against.
type App struct {
	Settings config.Settings
	Registry *task.Registry
	Compiler *sass.Compiler
	Hub      *notify.Hub

	configPath   string
	buildfile    string
	production   bool
	noSourcemaps bool
	quiet        bool

	loader *script.Loader
}

// NewRootCommand builds the assetforge command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "assetforge",
		Short:         "Declare and run web-asset build tasks",
		Long:          "assetforge runs named build tasks (compile Sass, bundle and minify JS/CSS)\ndeclared in a Lua buildfile or provided as built-in ingredients, and can watch\nsource globs to re-run tasks on change.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "config file (default assetforge.toml)")
	flags.StringVarP(&app.buildfile, "buildfile", "b", "", "Lua buildfile (default from config)")
	flags.BoolVar(&app.production, "production", false, "enable production mode (minification)")
	flags.BoolVar(&app.noSourcemaps, "no-sourcemaps", false, "disable sourcemap steps")
	flags.BoolVarP(&app.quiet, "quiet", "q", false, "suppress info output")

	cmd.AddCommand(newRunCommand(app))
	cmd.AddCommand(newWatchCommand(app))
	cmd.AddCommand(newListCommand(app))
	return cmd
}

// setup resolves settings, builds the notifier hub and registers tasks from
// the buildfile when one exists, otherwise from the built-in ingredients.
func (a *App) setup() error {
	obs.SetQuiet(a.quiet)

	path := a.configPath
	explicit := path != ""
	if !explicit {
		path = "assetforge.toml"
	}
	settings, err := config.Load(path, explicit)
	if err != nil {
		return err
	}

	// Flags override the file: they are the most deliberate input.
	if a.production {
		settings.Production = true
	}
	if a.noSourcemaps {
		settings.Sourcemaps = false
	}
	a.Settings = settings

	a.Hub = notify.NewHub(notify.NewLog())
	if settings.Notifications {
		a.Hub.Add(notify.NewDesktop())
	}

	a.Compiler = sass.New(settings.SassBin)
	a.Registry = task.NewRegistry()

	buildfile := a.buildfile
	explicit = buildfile != ""
	if buildfile == "" {
		buildfile = settings.Buildfile
	}
	buildfile = settings.Abs(buildfile)

	// Only the default buildfile location may fall through to the built-in
	// ingredients; an explicitly requested buildfile must exist.
	if _, err := os.Stat(buildfile); err != nil {
		if explicit {
			return fmt.Errorf("%w: buildfile %s: %v", config.ErrConfig, buildfile, err)
		}
		ingredient.Register(a.Registry, settings, a.Compiler, a.Hub)
		return nil
	}

	a.loader = script.NewLoader(a.Registry, settings, a.Compiler, a.Hub)
	return a.loader.Load(filepath.Clean(buildfile))
}

func (a *App) teardown() {
	if a.loader != nil {
		a.loader.Close()
	}
}
