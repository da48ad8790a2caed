// Package addon defines the nine pluggable extension points of the
// differential engine: a payload type each stage mutates, an optional
// read-only reference type, and an ordered per-stage add-on list built
// from configuration. This generalizes the teacher's
// pkg/core/tools.Registry component-based construction (one field per
// service, assembled once at startup) from "one registry of everything"
// to "one ordered list of add-ons per extension point".
package addon

import (
	"context"

	"github.com/blackcoderx/diffrun/pkg/config"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// Log2ReqsPayload is threaded through the log2reqs stage: a file path in,
// a request list out.
type Log2ReqsPayload struct {
	File     string
	Requests []model.Request
}

// Log2ReqsAddOn converts one input file into requests.
type Log2ReqsAddOn interface {
	Exec(ctx context.Context, p Log2ReqsPayload) (Log2ReqsPayload, error)
}

// Reqs2ReqsPayload carries the full request list before dispatch.
type Reqs2ReqsPayload struct {
	Requests []model.Request
}

// Reqs2ReqsReference is read-only context: the full resolved Config.
type Reqs2ReqsReference struct {
	Config config.Config
}

type Reqs2ReqsAddOn interface {
	Exec(ctx context.Context, p Reqs2ReqsPayload, ref Reqs2ReqsReference) (Reqs2ReqsPayload, error)
}

// Res2ResPayload is applied once per side, per trial.
type Res2ResPayload struct {
	Response model.Response
	Tags     []string
}

// Res2ResReference is the original request, read-only.
type Res2ResReference struct {
	Req model.Request
}

type Res2ResAddOn interface {
	Exec(ctx context.Context, p Res2ResPayload, ref Res2ResReference) (Res2ResPayload, error)
}

// Res2DictPayload converts a response into an optional structured tree.
// Result is nil when the body couldn't (or shouldn't) be parsed.
type Res2DictPayload struct {
	Response model.Response
	Result   interface{}
}

type Res2DictAddOn interface {
	Exec(ctx context.Context, p Res2DictPayload) (Res2DictPayload, error)
}

// JudgementPayload carries the initial diff classification and the
// equivalence verdict add-ons may revise.
type JudgementPayload struct {
	DiffsByCognition model.DiffsByCognition
	RegardAsSame     bool
}

// JudgementReference is everything a judgement add-on may read but not
// mutate: request identity, both structured trees, both raw responses.
type JudgementReference struct {
	Name       string
	Path       string
	QS         map[string][]string
	Headers    map[string]string
	DictOne    interface{}
	DictOther  interface{}
	ResOne     model.Response
	ResOther   model.Response
}

type JudgementAddOn interface {
	Exec(ctx context.Context, p JudgementPayload, ref JudgementReference) (JudgementPayload, error)
}

// StoreCriterionPayload decides whether this trial's artifacts persist.
type StoreCriterionPayload struct {
	Stored bool
}

// StoreCriterionReference is read-only context for that decision.
type StoreCriterionReference struct {
	Status   model.Status
	Req      model.Request
	ResOne   model.Response
	ResOther model.Response
}

type StoreCriterionAddOn interface {
	Exec(ctx context.Context, p StoreCriterionPayload, ref StoreCriterionReference) (StoreCriterionPayload, error)
}

// DumpPayload is applied once per side, only when persisting, to transform
// the bytes actually written to disk. OtherBody carries the opposite
// side's already-dumped bytes, read-only, for add-ons that produce a
// comparison sidecar rather than transforming Body itself. Sidecars holds
// any extra named artifacts such an add-on wants persisted alongside the
// main response file, keyed by filename suffix (e.g. "diff.txt").
type DumpPayload struct {
	Response  model.Response
	Body      []byte
	Encoding  string
	OtherBody []byte
	Sidecars  map[string][]byte
}

type DumpAddOn interface {
	Exec(ctx context.Context, p DumpPayload) (DumpPayload, error)
}

// DidChallengePayload carries the fully-assembled Trial for final
// decoration before it's appended to the run's trial list.
type DidChallengePayload struct {
	Trial model.Trial
}

// DidChallengeReference is read-only context: both raw responses and both
// structured trees.
type DidChallengeReference struct {
	ResOne       model.Response
	ResOther     model.Response
	ResOneProps  interface{}
	ResOtherProps interface{}
}

type DidChallengeAddOn interface {
	Exec(ctx context.Context, p DidChallengePayload, ref DidChallengeReference) (DidChallengePayload, error)
}

// FinalPayload carries the completed Report after all trials finish.
type FinalPayload struct {
	Report        model.Report
	OutputSummary model.OutputConfig
}

// FinalReference is read-only context: the notifier configuration.
type FinalReference struct {
	Notifiers []config.NotifierConfig
}

type FinalAddOn interface {
	Exec(ctx context.Context, p FinalPayload, ref FinalReference) (FinalPayload, error)
}
