// Package script loads Lua buildfiles. A buildfile declares tasks with the
// global `task` function; each declaration's `run` function becomes the
// task's deferred definition, evaluated once per run against a flow handle
// that exposes the pipeline step helpers.
//
// The Lua state is restricted: only the base, table, string and math
// libraries are opened, and code-loading globals are removed. Buildfiles
// declare tasks; they do not get a general-purpose runtime.
package script

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"assetforge/internal/config"
	"assetforge/internal/notify"
	"assetforge/internal/sass"
	"assetforge/internal/task"
)

const flowTypeName = "assetforge.flow"

// Loader evaluates buildfiles and registers the tasks they declare.
//
// gopher-lua states are not goroutine-safe; all evaluation, including
// deferred definition calls during watch re-runs, is serialized by the
// loader's mutex.
type Loader struct {
	mu       sync.Mutex
	state    *lua.LState
	registry *task.Registry
	settings config.Settings
	compiler *sass.Compiler
	notifier notify.Notifier
}

// NewLoader creates a loader that registers declared tasks into registry.
func NewLoader(registry *task.Registry, settings config.Settings, compiler *sass.Compiler, notifier notify.Notifier) *Loader {
	l := &Loader{
		state:    lua.NewState(lua.Options{SkipOpenLibs: true}),
		registry: registry,
		settings: settings,
		compiler: compiler,
		notifier: notifier,
	}
	l.install()
	return l
}

// Close releases the Lua state.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Close()
}

// Load evaluates the buildfile at path. Tasks declared by the script are
// registered immediately; their run functions stay deferred.
func (l *Loader) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.state.DoFile(path); err != nil {
		return fmt.Errorf("loading buildfile %s: %w", path, err)
	}
	return nil
}

// install opens the restricted library set and registers the buildfile API.
func (l *Loader) install() {
	L := l.state

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// Buildfiles declare tasks; they must not load arbitrary code.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	l.registerFlowType()
	L.SetGlobal("task", L.NewFunction(l.declareTask))
	L.SetGlobal("config", l.configTable())
}

// configTable exposes settings to buildfiles through a read-only proxy:
// reads go to the backing table, writes raise.
func (l *Loader) configTable() *lua.LTable {
	L := l.state
	data := L.NewTable()
	data.RawSetString("root", lua.LString(l.settings.Root))
	data.RawSetString("production", lua.LBool(l.settings.Production))
	data.RawSetString("sourcemaps", lua.LBool(l.settings.Sourcemaps))

	proxy := L.NewTable()
	mt := L.NewTable()
	mt.RawSetString("__index", data)
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("config is read-only")
		return 0
	}))
	L.SetMetatable(proxy, mt)
	return proxy
}

// declareTask implements the global task{...} function.
func (l *Loader) declareTask(L *lua.LState) int {
	decl := L.CheckTable(1)

	name, ok := getString(decl, "name")
	if !ok || name == "" {
		L.RaiseError("task: name is required")
		return 0
	}

	fn, ok := decl.RawGetString("run").(*lua.LFunction)
	if !ok {
		L.RaiseError("task %q: run function is required", name)
		return 0
	}

	paths := config.PathPair{
		Src:  getStringList(decl, "src"),
		Dest: stringOr(decl, "dest", "dist"),
		Out:  stringOr(decl, "out", ""),
	}
	if len(paths.Src) == 0 {
		L.RaiseError("task %q: src is required", name)
		return 0
	}

	opts := []task.Option{
		task.WithPaths(paths),
		task.WithDefinition(l.definition(fn)),
		task.WithNotifier(l.notifier),
		task.WithSourcemaps(l.settings.Sourcemaps),
		task.WithRoot(l.settings.Root),
	}
	if category, ok := getString(decl, "category"); ok {
		opts = append(opts, task.WithCategory(category))
	}

	t := task.New(name, opts...)

	watch := getStringList(decl, "watch")
	if len(watch) == 0 {
		watch = paths.Src
	}
	t.Watch(watch...)
	t.Ignore(getStringList(decl, "ignore")...)

	l.registry.Add(t)
	return 0
}

// definition wraps a Lua run function as a deferred task definition. The
// function receives a flow handle; whatever it chained is executed after the
// function returns.
func (l *Loader) definition(fn *lua.LFunction) task.Definition {
	return func(ctx context.Context, t *task.Task) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		h := &flowHandle{task: t, compiler: l.compiler}
		ud := l.state.NewUserData()
		ud.Value = h
		l.state.SetMetatable(ud, l.state.GetTypeMetatable(flowTypeName))

		if err := l.state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, ud); err != nil {
			return fmt.Errorf("buildfile run function: %w", err)
		}

		if h.flow == nil {
			return nil
		}
		return h.flow.Run(ctx)
	}
}
