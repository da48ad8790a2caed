package addon

import "context"

// Stages is the ordered add-on list for each of the nine extension points.
// Construction (resolving configured add-on names to instances, applying
// skip_addon_tag) happens in pkg/addon/builtin; Executor only ever sees
// already-resolved instances, keeping this package free of the import
// cycle a name->constructor registry would otherwise create (every
// concrete add-on package needs to import these contracts).
type Stages struct {
	Log2Reqs       []Log2ReqsAddOn
	Reqs2Reqs      []Reqs2ReqsAddOn
	Res2Res        []Res2ResAddOn
	Res2Dict       []Res2DictAddOn
	Judgement      []JudgementAddOn
	StoreCriterion []StoreCriterionAddOn
	Dump           []DumpAddOn
	DidChallenge   []DidChallengeAddOn
	Final          []FinalAddOn
}

// Executor applies each extension point's configured add-ons in sequence.
// It is read-only after construction: Stages never change once built.
type Executor struct {
	stages Stages
}

// NewExecutor builds an Executor from an already-resolved Stages value.
func NewExecutor(stages Stages) *Executor {
	return &Executor{stages: stages}
}

func (e *Executor) ApplyLog2Reqs(ctx context.Context, p Log2ReqsPayload) (Log2ReqsPayload, error) {
	var err error
	for _, a := range e.stages.Log2Reqs {
		p, err = a.Exec(ctx, p)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyReqs2Reqs(ctx context.Context, p Reqs2ReqsPayload, ref Reqs2ReqsReference) (Reqs2ReqsPayload, error) {
	var err error
	for _, a := range e.stages.Reqs2Reqs {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyRes2Res(ctx context.Context, p Res2ResPayload, ref Res2ResReference) (Res2ResPayload, error) {
	var err error
	for _, a := range e.stages.Res2Res {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyRes2Dict(ctx context.Context, p Res2DictPayload) (Res2DictPayload, error) {
	var err error
	for _, a := range e.stages.Res2Dict {
		p, err = a.Exec(ctx, p)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyJudgement(ctx context.Context, p JudgementPayload, ref JudgementReference) (JudgementPayload, error) {
	var err error
	for _, a := range e.stages.Judgement {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyStoreCriterion(ctx context.Context, p StoreCriterionPayload, ref StoreCriterionReference) (StoreCriterionPayload, error) {
	var err error
	for _, a := range e.stages.StoreCriterion {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyDump(ctx context.Context, p DumpPayload) (DumpPayload, error) {
	var err error
	for _, a := range e.stages.Dump {
		p, err = a.Exec(ctx, p)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyDidChallenge(ctx context.Context, p DidChallengePayload, ref DidChallengeReference) (DidChallengePayload, error) {
	var err error
	for _, a := range e.stages.DidChallenge {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func (e *Executor) ApplyFinal(ctx context.Context, p FinalPayload, ref FinalReference) (FinalPayload, error) {
	var err error
	for _, a := range e.stages.Final {
		p, err = a.Exec(ctx, p, ref)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}
