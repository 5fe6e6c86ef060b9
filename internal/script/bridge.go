package script

import lua "github.com/yuin/gopher-lua"

// Declaration-table accessors. Buildfile values arrive as Lua tables; these
// helpers pull typed fields out without reflection.

func getString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

func stringOr(t *lua.LTable, key, fallback string) string {
	if s, ok := getString(t, key); ok && s != "" {
		return s
	}
	return fallback
}

// getStringList accepts either a single string or an array table of strings.
func getStringList(t *lua.LTable, key string) []string {
	switch v := t.RawGetString(key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		var out []string
		v.ForEach(func(_, item lua.LValue) {
			if s, ok := item.(lua.LString); ok {
				out = append(out, string(s))
			}
		})
		return out
	default:
		return nil
	}
}
