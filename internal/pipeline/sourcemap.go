package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
)

// sourceMap is the source-map v3 JSON document written next to outputs.
//
// Mappings are intentionally empty: downstream tooling only needs the
// original sources and their contents to resolve a bundle back to its
// inputs; positional mappings are the concern of the individual compilers.
type sourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// SourcemapInit builds the stage that starts origin tracking on every asset
// currently in the pipeline. Each asset's present path and contents become
// its first origin; stages that merge assets merge origins.
func SourcemapInit() Stage {
	return EachAsset("sourcemap-init", func(_ context.Context, a *Asset) error {
		a.mapInit = true
		a.origins = []Origin{{Path: a.Rel(), Contents: a.Contents}}
		return nil
	})
}

// SourcemapWrite builds the stage that emits one ".map" asset per tracked
// asset and appends the sourceMappingURL footer to the asset itself. Runs
// before the destination stage so both files land together.
func SourcemapWrite() Stage {
	return StageFunc("sourcemap-write", func(ctx context.Context, assets []*Asset) ([]*Asset, error) {
		out := make([]*Asset, 0, len(assets)*2)
		for _, a := range assets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out = append(out, a)
			if !a.mapInit {
				continue
			}

			mapName := a.Name() + ".map"
			doc := sourceMap{
				Version:  3,
				File:     a.Name(),
				Names:    []string{},
				Mappings: "",
			}
			for _, o := range a.origins {
				doc.Sources = append(doc.Sources, o.Path)
				doc.SourcesContent = append(doc.SourcesContent, string(o.Contents))
			}

			data, err := json.Marshal(doc)
			if err != nil {
				return nil, fmt.Errorf("%s: encoding sourcemap: %w", a.Path, err)
			}

			a.Contents = append(a.Contents, []byte(mapFooter(a.Ext(), mapName))...)
			out = append(out, &Asset{
				Path:     mapName,
				Base:     a.Base,
				Contents: data,
			})
		}
		return out, nil
	})
}

func mapFooter(ext, mapName string) string {
	if ext == ".css" {
		return fmt.Sprintf("\n/*# sourceMappingURL=%s */\n", mapName)
	}
	return fmt.Sprintf("\n//# sourceMappingURL=%s\n", mapName)
}
