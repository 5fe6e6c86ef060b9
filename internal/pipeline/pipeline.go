package pipeline

import "context"

// Pipeline is an ordered sequence of stages over a source of assets.
//
// Sources are resolved at Run time, so a pipeline value can be rebuilt and
// re-run cheaply on every watch-triggered invocation.
type Pipeline struct {
	base   string
	globs  []string
	preset []*Asset
	stages []Stage
}

// Src starts a pipeline from source globs resolved relative to base.
func Src(base string, globs ...string) *Pipeline {
	return &Pipeline{base: base, globs: globs}
}

// From starts a pipeline from already-materialized assets.
func From(assets []*Asset) *Pipeline {
	return &Pipeline{preset: assets}
}

// Pipe appends a stage.
func (p *Pipeline) Pipe(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Dest appends the destination stage writing assets into dir.
func (p *Pipeline) Dest(dir string) *Pipeline {
	return p.Pipe(NewDest(dir))
}

// Run resolves the source and applies every stage in order. The first stage
// error aborts the run and is returned wrapped with the stage name.
func (p *Pipeline) Run(ctx context.Context) ([]*Asset, error) {
	assets := p.preset
	if len(p.globs) > 0 {
		read, err := ReadAssets(p.base, p.globs)
		if err != nil {
			return nil, &StageError{Stage: "src", Err: err}
		}
		assets = append(assets, read...)
	}

	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := s.Run(ctx, assets)
		if err != nil {
			return nil, &StageError{Stage: s.Name(), Err: err}
		}
		assets = next
	}
	return assets, nil
}
