package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// NewDest builds the stage that writes each asset into dir under its file
// name. Writes go through a temp file in the destination directory followed
// by a rename, so a watched output directory never observes partial files.
//
// Within a single run, later assets with the same name overwrite earlier
// ones (last write wins).
func NewDest(dir string) Stage {
	return StageFunc("dest", func(ctx context.Context, assets []*Asset) ([]*Asset, error) {
		if len(assets) == 0 {
			return assets, nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir %q: %w", dir, err)
		}

		for _, a := range assets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			target := filepath.Join(dir, a.Name())
			if err := writeAtomic(dir, target, a.Contents); err != nil {
				return nil, fmt.Errorf("writing %q: %w", target, err)
			}
			a.OutPath = target
		}
		return assets, nil
	})
}

func writeAtomic(dir, target string, contents []byte) error {
	tmp, err := os.CreateTemp(dir, ".assetforge-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
