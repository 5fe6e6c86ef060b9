package pipeline

import (
	"bytes"
	"context"
)

// Concat builds the stage that joins all assets, in their current order,
// into a single asset named name. Origin tracking survives concatenation:
// the bundle's origins are the union, in order, of its parts' origins.
//
// An empty pipeline concatenates to nothing rather than an empty bundle.
func Concat(name string) Stage {
	return StageFunc("concat", func(_ context.Context, assets []*Asset) ([]*Asset, error) {
		if len(assets) == 0 {
			return nil, nil
		}

		parts := make([][]byte, 0, len(assets))
		bundle := &Asset{
			Path: name,
			Base: assets[0].Base,
		}
		for _, a := range assets {
			parts = append(parts, a.Contents)
			if a.mapInit {
				bundle.mapInit = true
				bundle.origins = append(bundle.origins, a.origins...)
			}
		}
		bundle.Contents = bytes.Join(parts, []byte("\n"))
		return []*Asset{bundle}, nil
	})
}
