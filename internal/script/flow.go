package script

import (
	lua "github.com/yuin/gopher-lua"

	"assetforge/internal/sass"
	"assetforge/internal/task"
)

// flowHandle is the userdata value behind the `t` argument of a buildfile
// run function. Step methods chain onto the underlying task flow; the flow
// itself is executed by the loader after the run function returns.
type flowHandle struct {
	task     *task.Task
	compiler *sass.Compiler
	flow     *task.Flow
}

func (h *flowHandle) ensure() *task.Flow {
	if h.flow == nil {
		h.flow = h.task.Src()
	}
	return h.flow
}

// registerFlowType installs the flow handle metatable with its step methods.
func (l *Loader) registerFlowType() {
	L := l.state
	mt := L.NewTypeMetatable(flowTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"sass":       flowSass,
		"autoprefix": flowAutoprefix,
		"minify":     flowMinify,
		"concat":     flowConcat,
		"sourcemaps": flowSourcemaps,
		"writemaps":  flowWritemaps,
		"save":       flowSave,
		"step":       flowStep,
	}))
}

func checkFlow(L *lua.LState) *flowHandle {
	ud := L.CheckUserData(1)
	if h, ok := ud.Value.(*flowHandle); ok {
		return h
	}
	L.ArgError(1, "flow expected")
	return nil
}

// chain pushes the receiver back so steps compose: t:sass():minify():save().
func chain(L *lua.LState) int {
	L.Push(L.CheckUserData(1))
	return 1
}

func flowSass(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().Sass(h.compiler)
	return chain(L)
}

func flowAutoprefix(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().Autoprefix()
	return chain(L)
}

func flowMinify(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().Minify()
	return chain(L)
}

func flowConcat(L *lua.LState) int {
	h := checkFlow(L)
	name := L.OptString(2, "")
	h.flow = h.ensure().Concat(name)
	return chain(L)
}

func flowSourcemaps(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().SourcemapInit()
	return chain(L)
}

func flowWritemaps(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().SourcemapWrite()
	return chain(L)
}

func flowSave(L *lua.LState) int {
	h := checkFlow(L)
	h.flow = h.ensure().Save()
	return chain(L)
}

// flowStep records a custom description without piping a stage, so
// buildfiles can document side effects of their own.
func flowStep(L *lua.LState) int {
	h := checkFlow(L)
	h.task.RecordStep(L.CheckString(2))
	return chain(L)
}
