package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetforge/internal/config"
	"assetforge/internal/sass"
	"assetforge/internal/task"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newLoader(t *testing.T, root string) (*Loader, *task.Registry) {
	t.Helper()
	settings := config.Defaults()
	settings.Root = root
	reg := task.NewRegistry()
	l := NewLoader(reg, settings, sass.New("sass"), nil)
	t.Cleanup(l.Close)
	return l, reg
}

func TestLoad_DeclaresTasks(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
task{
    name = "scripts",
    category = "scripts",
    src = { "js/*.js" },
    dest = "dist/js",
    out = "app.js",
    watch = { "js/**/*.js" },
    run = function(t)
        t:concat("app.js"):save()
    end,
}

task{
    name = "vendor",
    src = "vendor/*.js",
    dest = "dist/js",
    run = function(t) end,
}
`)

	l, reg := newLoader(t, root)
	if err := l.Load(buildfile); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", reg.Len())
	}

	tasks := reg.Tasks()
	if tasks[0].Name != "scripts" || tasks[1].Name != "vendor" {
		t.Fatalf("unexpected registration order: %s, %s", tasks[0].Name, tasks[1].Name)
	}
	if tasks[0].Category != "scripts" {
		t.Fatalf("unexpected category: %q", tasks[0].Category)
	}
	if tasks[1].Category != task.DefaultCategory {
		t.Fatalf("missing category must default, got %q", tasks[1].Category)
	}
	if !tasks[0].Matches("js/sub/app.js") {
		t.Fatalf("watch globs not applied")
	}
	// A bare string src becomes a one-element list.
	if got := tasks[1].Paths.Src; len(got) != 1 || got[0] != "vendor/*.js" {
		t.Fatalf("unexpected src: %v", got)
	}
}

func TestRun_DeferredDefinitionBuildsPipeline(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "js/01-a.js", "var a = 1;")
	writeFile(t, root, "js/02-b.js", "var b = 2;")
	buildfile := writeFile(t, root, "assetforge.lua", `
task{
    name = "scripts",
    src = { "js/*.js" },
    dest = "dist/js",
    run = function(t)
        t:sourcemaps():concat("app.js"):writemaps():save()
    end,
}
`)

	l, reg := newLoader(t, root)
	if err := l.Load(buildfile); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := reg.RunAll(context.Background(), "scripts"); err != nil {
		t.Fatalf("run: %v", err)
	}

	bundle, err := os.ReadFile(filepath.Join(root, "dist/js/app.js"))
	if err != nil {
		t.Fatalf("reading bundle: %v", err)
	}
	body := string(bundle)
	if !strings.Contains(body, "var a = 1;") || !strings.Contains(body, "var b = 2;") {
		t.Fatalf("bundle missing sources: %q", body)
	}
	if _, err := os.Stat(filepath.Join(root, "dist/js/app.js.map")); err != nil {
		t.Fatalf("expected sourcemap next to bundle: %v", err)
	}

	tk := reg.Tasks()[0]
	if !tk.Complete() {
		t.Fatalf("task must be complete after run")
	}
	if len(tk.Steps()) == 0 {
		t.Fatalf("expected recorded steps")
	}
}

func TestRun_LuaErrorSurfacesAsTaskFailure(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
task{
    name = "broken",
    src = { "js/*.js" },
    run = function(t)
        error("bad step")
    end,
}
`)

	l, reg := newLoader(t, root)
	if err := l.Load(buildfile); err != nil {
		t.Fatalf("load: %v", err)
	}
	err := reg.RunAll(context.Background(), "broken")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "bad step") {
		t.Fatalf("expected lua error message, got %v", err)
	}
	if reg.Tasks()[0].Complete() {
		t.Fatalf("failed run must not complete the task")
	}
}

func TestLoad_RejectsDeclarationsWithoutName(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
task{ src = "js/*.js", run = function(t) end }
`)

	l, _ := newLoader(t, root)
	if err := l.Load(buildfile); err == nil {
		t.Fatalf("expected error for missing name")
	}
}

func TestLoad_ConfigTableIsExposed(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
if config.sourcemaps ~= true then
    error("expected sourcemaps in config")
end
task{ name = "noop", src = "x", run = function(t) end }
`)

	l, reg := newLoader(t, root)
	if err := l.Load(buildfile); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected declaration after config check")
	}
}

func TestLoad_ConfigTableRejectsWrites(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
config.root = "/tmp/elsewhere"
`)

	l, _ := newLoader(t, root)
	err := l.Load(buildfile)
	if err == nil {
		t.Fatalf("expected error for config write")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_CodeLoadingGlobalsRemoved(t *testing.T) {
	root := t.TempDir()
	buildfile := writeFile(t, root, "assetforge.lua", `
if dofile ~= nil or loadfile ~= nil or load ~= nil then
    error("code loading must be disabled")
end
`)

	l, _ := newLoader(t, root)
	if err := l.Load(buildfile); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
