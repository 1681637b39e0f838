package build

import (
	"github.com/papapumpkin/fxwatch/internal/shader"
	"github.com/papapumpkin/fxwatch/internal/stale"
)

// Target is one variant of a shader with its compiler job and outputs.
type Target struct {
	Variant shader.Variant
	Job     shader.Job
	Outputs shader.Outputs
	StatErr error // Set when an output could not be inspected; the target is treated as stale
}

// ShaderPlan is the staleness verdict for one source.
type ShaderPlan struct {
	Source     *shader.Source
	Effective  stale.Effective
	Err        error    // Source could not be evaluated; nothing is built
	Suppressed bool     // A failure is recorded at this exact Effective
	Stale      []Target // Variants to compile, in build order
}

// Plan evaluates every tracked shader without compiling anything.
func (o *Orchestrator) Plan(st *State) []ShaderPlan {
	sources := st.Sorted()
	plans := make([]ShaderPlan, 0, len(sources))
	for _, src := range sources {
		plans = append(plans, o.planShader(st, src))
	}
	return plans
}

func (o *Orchestrator) planShader(st *State, src *shader.Source) ShaderPlan {
	plan := ShaderPlan{Source: src}

	eff, err := stale.Evaluate(src.Path, st.Deps.Closure(src.Path))
	if err != nil {
		plan.Err = err
		return plan
	}
	plan.Effective = eff

	if st.Failures.ShouldSkip(src.Path, eff) {
		plan.Suppressed = true
		return plan
	}

	for _, v := range src.Variants(o.Options.Policy) {
		out := shader.OutputsFor(o.Options.OutDir, src.Root, v)
		isStale, err := stale.AnyStale(eff, out.Object, out.Asm)
		if !isStale {
			continue
		}
		plan.Stale = append(plan.Stale, Target{
			Variant: v,
			Job:     shader.NewJob(src, v, o.Options.OutDir, o.Options.ShaderModel),
			Outputs: out,
			StatErr: err,
		})
	}
	return plan
}
