package pipeline

import (
	"context"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	return m
}()

// Minify builds the stage that minifies each asset according to its file
// extension. Assets with extensions the minifier does not know pass through
// unchanged, so mixed pipelines (e.g. with ".map" assets) stay valid.
func Minify() Stage {
	return EachAsset("minify", func(_ context.Context, a *Asset) error {
		mediatype := mediatypeFor(a.Ext())
		if mediatype == "" {
			return nil
		}
		out, err := minifier.Bytes(mediatype, a.Contents)
		if err != nil {
			return fmt.Errorf("minifying: %w", err)
		}
		a.Contents = out
		return nil
	})
}

func mediatypeFor(ext string) string {
	switch ext {
	case ".css":
		return "text/css"
	case ".js", ".mjs":
		return "application/javascript"
	default:
		return ""
	}
}
