package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// prefixes maps CSS properties to the vendor prefixes still required by
// browsers the built-in ingredient targets. The table is deliberately small;
// projects needing the full browser matrix register their own stage.
var prefixes = map[string][]string{
	"appearance":           {"-webkit-", "-moz-"},
	"backdrop-filter":      {"-webkit-"},
	"box-decoration-break": {"-webkit-"},
	"clip-path":            {"-webkit-"},
	"hyphens":              {"-webkit-", "-ms-"},
	"tab-size":             {"-moz-"},
	"text-size-adjust":     {"-webkit-", "-ms-"},
	"user-select":          {"-webkit-", "-moz-", "-ms-"},
}

// declRe matches one CSS declaration: leading separator, property, colon,
// value. Values run to the next ';' or '}'.
var declRe = regexp.MustCompile(`([{;]|^)(\s*)([a-zA-Z-]+)(\s*:\s*)([^;}]+)`)

// Autoprefix builds the stage that inserts vendor-prefixed copies of known
// CSS declarations ahead of the unprefixed original. Non-CSS assets pass
// through untouched. Declarations that are already prefixed are left alone.
func Autoprefix() Stage {
	return EachAsset("autoprefix", func(_ context.Context, a *Asset) error {
		if a.Ext() != ".css" {
			return nil
		}
		a.Contents = []byte(prefixCSS(string(a.Contents)))
		return nil
	})
}

func prefixCSS(src string) string {
	var b strings.Builder
	last := 0
	for _, m := range declRe.FindAllStringSubmatchIndex(src, -1) {
		b.WriteString(src[last:m[0]])
		b.WriteString(expandDecl(src, m))
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String()
}

// expandDecl rewrites one matched declaration. Vendor copies already present
// earlier in the same block are not inserted again.
func expandDecl(src string, m []int) string {
	match := src[m[0]:m[1]]
	sep, indent := src[m[2]:m[3]], src[m[4]:m[5]]
	prop, colon, value := src[m[6]:m[7]], src[m[8]:m[9]], src[m[10]:m[11]]

	if strings.HasPrefix(prop, "-") {
		return match
	}
	vendor, ok := prefixes[strings.ToLower(prop)]
	if !ok {
		return match
	}

	block := src[blockStart(src, m[0]):m[0]]
	var b strings.Builder
	b.WriteString(sep)
	b.WriteString(indent)
	for _, p := range vendor {
		if strings.Contains(block, p+prop) {
			continue
		}
		b.WriteString(p)
		b.WriteString(prop)
		b.WriteString(colon)
		b.WriteString(value)
		b.WriteString(";")
	}
	b.WriteString(prop)
	b.WriteString(colon)
	b.WriteString(value)
	return b.String()
}

func blockStart(src string, from int) int {
	if i := strings.LastIndexByte(src[:from], '{'); i >= 0 {
		return i
	}
	return 0
}
