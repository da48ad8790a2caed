package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/diff"
	"github.com/blackcoderx/diffrun/pkg/httpclient"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// ArtifactWriter persists one trial's stored bytes under its session
// directory. The engine only ever calls WriteTrialArtifact; where and how
// that lands on disk (directory layout, the "latest" symlink) is
// pkg/report's concern.
type ArtifactWriter interface {
	WriteTrialArtifact(key, relPath string, body []byte) error
}

// TrialDeps is everything a trial needs that doesn't change across the
// whole run: both access points' resolved clients and header overlays, the
// add-on executor, where to persist artifacts, and a logger.
type TrialDeps struct {
	One, Other       model.AccessPoint
	ClientOne        *httpclient.Client
	ClientOther      *httpclient.Client
	HeadersOne       map[string]string
	HeadersOther     map[string]string
	Executor         *addon.Executor
	Writer           ArtifactWriter
	Key              string
	NumberOfRequests int
	Logger           Logger
}

// RunTrial is the per-request executor: spec.md's "challenge" step,
// grounded directly on original_source/jumeaux/executor.py's challenge()
// — the same URL construction, concurrent paired dispatch, failure
// short-circuit, res2res/res2dict/diff/judgement/store-criterion/dump
// sequence, and did_challenge finalization.
func RunTrial(ctx context.Context, deps TrialDeps, seq int, req model.Request) (model.Trial, error) {
	name := req.Name
	if name == "" {
		name = strconv.Itoa(seq)
	}
	logPrefix := fmt.Sprintf("[%d / %d]", seq, deps.NumberOfRequests)
	deps.Logger.InfoLv3("%s %d. %s", logPrefix, seq, name)

	urlOne, err := BuildURL(deps.One, req)
	if err != nil {
		return model.Trial{}, fmt.Errorf("building one URL for %s: %w", name, err)
	}
	urlOther, err := BuildURL(deps.Other, req)
	if err != nil {
		return model.Trial{}, fmt.Errorf("building other URL for %s: %w", name, err)
	}

	requestTime := time.Now().Format(time.RFC3339)
	deps.Logger.InfoLv3("%s One   URL: %s", logPrefix, urlOne)
	deps.Logger.InfoLv3("%s Other URL: %s", logPrefix, urlOther)

	body, contentType := encodeBody(req)

	rawOne, rawOther, dispatchErr := dispatchPair(ctx, deps, req, urlOne, urlOther, body, contentType)
	if dispatchErr != nil {
		deps.Logger.InfoLv1("%s failed: %s %v", logPrefix, name, dispatchErr)
		return model.Trial{
			Seq:         seq,
			Name:        name,
			RequestTime: requestTime,
			Status:      model.StatusFailure,
			Method:      req.Method,
			Path:        req.Path,
			Queries:     req.QS,
			Form:        req.Form,
			JSON:        req.JSON,
			Headers:     req.Headers,
			One:         model.TrialSide{URL: urlOne, Type: model.KindUnknown},
			Other:       model.TrialSide{URL: urlOther, Type: model.KindUnknown},
		}, nil
	}

	resOne := toResponse(urlOne, rawOne, deps.One.DefaultResponseEncoding)
	resOther := toResponse(urlOther, rawOther, deps.Other.DefaultResponseEncoding)

	deps.Logger.InfoLv3("%s One:   %d / %.3fs / %db / %s", logPrefix, resOne.StatusCode, resOne.ElapsedSec, resOne.Byte, resOne.ContentType)
	deps.Logger.InfoLv3("%s Other: %d / %.3fs / %db / %s", logPrefix, resOther.StatusCode, resOther.ElapsedSec, resOther.Byte, resOther.ContentType)

	res2resOne, err := deps.Executor.ApplyRes2Res(ctx, addon.Res2ResPayload{Response: resOne}, addon.Res2ResReference{Req: req})
	if err != nil {
		return model.Trial{}, fmt.Errorf("res2res (one) for %s: %w", name, err)
	}
	res2resOther, err := deps.Executor.ApplyRes2Res(ctx, addon.Res2ResPayload{Response: resOther}, addon.Res2ResReference{Req: req})
	if err != nil {
		return model.Trial{}, fmt.Errorf("res2res (other) for %s: %w", name, err)
	}
	resOne, resOther = res2resOne.Response, res2resOther.Response

	dictOnePayload, err := deps.Executor.ApplyRes2Dict(ctx, addon.Res2DictPayload{Response: resOne, Result: defaultRes2Dict(resOne)})
	if err != nil {
		return model.Trial{}, fmt.Errorf("res2dict (one) for %s: %w", name, err)
	}
	dictOtherPayload, err := deps.Executor.ApplyRes2Dict(ctx, addon.Res2DictPayload{Response: resOther, Result: defaultRes2Dict(resOther)})
	if err != nil {
		return model.Trial{}, fmt.Errorf("res2dict (other) for %s: %w", name, err)
	}
	dictOne, dictOther := dictOnePayload.Result, dictOtherPayload.Result

	diffsByCognition, regardAsSame := computeInitialDiff(dictOne, dictOther, resOne, resOther)

	judgementResult, err := deps.Executor.ApplyJudgement(ctx,
		addon.JudgementPayload{DiffsByCognition: diffsByCognition, RegardAsSame: regardAsSame},
		addon.JudgementReference{
			Name: name, Path: req.Path, QS: req.QS, Headers: req.Headers,
			DictOne: dictOne, DictOther: dictOther, ResOne: resOne, ResOther: resOther,
		})
	if err != nil {
		return model.Trial{}, fmt.Errorf("judgement for %s: %w", name, err)
	}

	// spec.md §4.2 step 8: once every judgement add-on has run, regard_as_same
	// re-derives from the "unknown" cognition's emptiness when a structured
	// diff exists at all — an add-on can only make a trial "same" by moving
	// unknown's entries elsewhere, not by flipping the flag in isolation.
	// When there was no structured diff to begin with (no "unknown" bucket
	// in the map), there's nothing to re-derive from, so the add-ons'
	// reported verdict stands.
	regardAsSameFinal := judgementResult.RegardAsSame
	if unknown, ok := judgementResult.DiffsByCognition[model.UnknownCognition]; ok {
		regardAsSameFinal = unknown.IsEmpty()
	}

	status := model.StatusDifferent
	if regardAsSameFinal {
		status = model.StatusSame
	}
	symbol := "X"
	logFn := deps.Logger.InfoLv1
	if status == model.StatusSame {
		symbol, logFn = "O", deps.Logger.InfoLv2
	}
	logFn("%s %s (%d - %d) <%.3fs - %.3fs> {%s} %s", logPrefix, symbol, resOne.StatusCode, resOther.StatusCode, resOne.ElapsedSec, resOther.ElapsedSec, req.Method, name)

	storeResult, err := deps.Executor.ApplyStoreCriterion(ctx,
		addon.StoreCriterionPayload{},
		addon.StoreCriterionReference{Status: status, Req: req, ResOne: resOne, ResOther: resOther})
	if err != nil {
		return model.Trial{}, fmt.Errorf("store_criterion for %s: %w", name, err)
	}

	oneSide := model.TrialSide{
		URL: resOne.URL, Type: resOne.Type, StatusCode: intPtr(resOne.StatusCode),
		Byte: intPtr(resOne.Byte), ResponseSec: floatPtr(resOne.ElapsedSec),
		ContentType: resOne.ContentType, MimeType: resOne.MimeType, Encoding: resOne.Encoding,
	}
	otherSide := model.TrialSide{
		URL: resOther.URL, Type: resOther.Type, StatusCode: intPtr(resOther.StatusCode),
		Byte: intPtr(resOther.Byte), ResponseSec: floatPtr(resOther.ElapsedSec),
		ContentType: resOther.ContentType, MimeType: resOther.MimeType, Encoding: resOther.Encoding,
	}

	if storeResult.Stored {
		if err := deps.storeTrial(ctx, seq, name, resOne, resOther, dictOne, dictOther, &oneSide, &otherSide); err != nil {
			return model.Trial{}, fmt.Errorf("storing artifacts for %s: %w", name, err)
		}
	}

	trial := model.Trial{
		Seq: seq, Name: name,
		Tags:            uniqStrings(append(append([]string{}, res2resOne.Tags...), res2resOther.Tags...)),
		RequestTime:     requestTime,
		Status:          status,
		Method:          req.Method,
		Path:            req.Path,
		Queries:         req.QS,
		Form:            req.Form,
		JSON:            req.JSON,
		Headers:         req.Headers,
		DiffsByCognition: judgementResult.DiffsByCognition.WithoutEmpty(),
		One:             oneSide,
		Other:           otherSide,
	}

	didChallengeResult, err := deps.Executor.ApplyDidChallenge(ctx,
		addon.DidChallengePayload{Trial: trial},
		addon.DidChallengeReference{ResOne: resOne, ResOther: resOther, ResOneProps: dictOne, ResOtherProps: dictOther})
	if err != nil {
		return model.Trial{}, fmt.Errorf("did_challenge for %s: %w", name, err)
	}

	return didChallengeResult.Trial, nil
}

func (deps TrialDeps) storeTrial(ctx context.Context, seq int, name string, resOne, resOther model.Response, dictOne, dictOther interface{}, oneSide, otherSide *model.TrialSide) error {
	dumpOne, err := deps.Executor.ApplyDump(ctx, addon.DumpPayload{Response: resOne, Body: resOne.Body, Encoding: resOne.Encoding, OtherBody: resOther.Body})
	if err != nil {
		return err
	}
	dumpOther, err := deps.Executor.ApplyDump(ctx, addon.DumpPayload{Response: resOther, Body: resOther.Body, Encoding: resOther.Encoding, OtherBody: resOne.Body})
	if err != nil {
		return err
	}

	fileOne := fmt.Sprintf("one/(%d)%s", seq, name)
	fileOther := fmt.Sprintf("other/(%d)%s", seq, name)
	if err := deps.Writer.WriteTrialArtifact(deps.Key, fileOne, dumpOne.Body); err != nil {
		return err
	}
	if err := deps.Writer.WriteTrialArtifact(deps.Key, fileOther, dumpOther.Body); err != nil {
		return err
	}
	oneSide.File = strPtr(fileOne)
	otherSide.File = strPtr(fileOther)

	for suffix, content := range dumpOne.Sidecars {
		if err := deps.Writer.WriteTrialArtifact(deps.Key, fmt.Sprintf("one/(%d)%s.%s", seq, name, suffix), content); err != nil {
			return err
		}
	}
	for suffix, content := range dumpOther.Sidecars {
		if err := deps.Writer.WriteTrialArtifact(deps.Key, fmt.Sprintf("other/(%d)%s.%s", seq, name, suffix), content); err != nil {
			return err
		}
	}

	if dictOne != nil {
		propFileOne := fmt.Sprintf("one-props/(%d)%s.json", seq, name)
		propBody, err := json.Marshal(dictOne)
		if err != nil {
			return err
		}
		if err := deps.Writer.WriteTrialArtifact(deps.Key, propFileOne, propBody); err != nil {
			return err
		}
		oneSide.PropFile = strPtr(propFileOne)
	}
	if dictOther != nil {
		propFileOther := fmt.Sprintf("other-props/(%d)%s.json", seq, name)
		propBody, err := json.Marshal(dictOther)
		if err != nil {
			return err
		}
		if err := deps.Writer.WriteTrialArtifact(deps.Key, propFileOther, propBody); err != nil {
			return err
		}
		otherSide.PropFile = strPtr(propFileOther)
	}

	return nil
}

func dispatchPair(ctx context.Context, deps TrialDeps, req model.Request, urlOne, urlOther string, body []byte, contentType string) (httpclient.Response, httpclient.Response, error) {
	headersOne := mergeHeaders(deps.HeadersOne, req.Headers)
	headersOther := mergeHeaders(deps.HeadersOther, req.Headers)
	if contentType != "" {
		headersOne["Content-Type"] = contentType
		headersOther["Content-Type"] = contentType
	}

	var resOne, resOther httpclient.Response
	var errOne, errOther error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resOne, errOne = deps.ClientOne.Do(ctx, httpclient.Request{Method: string(req.Method), URL: urlOne, Headers: headersOne, Body: body})
	}()
	go func() {
		defer wg.Done()
		resOther, errOther = deps.ClientOther.Do(ctx, httpclient.Request{Method: string(req.Method), URL: urlOther, Headers: headersOther, Body: body})
	}()
	wg.Wait()

	if errOne != nil {
		return resOne, resOther, errOne
	}
	if errOther != nil {
		return resOne, resOther, errOther
	}
	return resOne, resOther, nil
}

func mergeHeaders(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func encodeBody(req model.Request) (body []byte, contentType string) {
	switch {
	case req.HasJSON():
		b, _ := json.Marshal(req.JSON)
		return b, "application/json"
	case req.HasForm():
		values := make([]string, 0, len(req.Form))
		for k, v := range req.Form {
			values = append(values, k+"="+v)
		}
		return []byte(strings.Join(values, "&")), "application/x-www-form-urlencoded"
	default:
		return nil, ""
	}
}

func toResponse(url string, raw httpclient.Response, defaultEncoding string) model.Response {
	encoding := defaultEncoding
	if encoding == "" {
		encoding = "utf-8"
	}
	mimeType := raw.ContentType
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	mimeType = strings.TrimSpace(mimeType)

	return model.Response{
		URL:         url,
		StatusCode:  raw.StatusCode,
		Body:        raw.Body,
		Encoding:    encoding,
		ContentType: raw.ContentType,
		MimeType:    mimeType,
		Byte:        len(raw.Body),
		ElapsedSec:  math.Round(raw.ElapsedSec*100) / 100,
		Type:        classifyContentKind(mimeType),
	}
}

func classifyContentKind(mimeType string) model.ContentKind {
	switch {
	case strings.Contains(mimeType, "json"):
		return model.KindJSON
	case strings.Contains(mimeType, "xml"):
		return model.KindXML
	case strings.Contains(mimeType, "html"):
		return model.KindHTML
	case strings.HasPrefix(mimeType, "text/"):
		return model.KindPlain
	default:
		return model.KindUnknown
	}
}

// defaultRes2Dict is the engine's own built-in res2dict behavior: parse
// the body as JSON when it's been classified as such, leaving every other
// content kind unparsed (res2dict add-ons may replace this outright).
func defaultRes2Dict(res model.Response) interface{} {
	if res.Type != model.KindJSON || len(res.Body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(res.Body, &v); err != nil {
		return nil
	}
	return v
}

// computeInitialDiff mirrors judgement()'s pre-add-on classification: no
// diff at all when either side couldn't be parsed, no diff when the raw
// bodies are byte-identical, otherwise the structural diff's keys under
// the "unknown" cognition.
func computeInitialDiff(dictOne, dictOther interface{}, resOne, resOther model.Response) (model.DiffsByCognition, bool) {
	if dictOne == nil || dictOther == nil {
		return nil, string(resOne.Body) == string(resOther.Body)
	}
	if string(resOne.Body) == string(resOther.Body) {
		return model.DiffsByCognition{model.UnknownCognition: model.DiffKeys{}}, true
	}

	added, changed, removed := diff.Keys(diff.Compare(dictOne, dictOther))
	unknown := model.DiffKeys{Added: added, Changed: changed, Removed: removed}
	return model.DiffsByCognition{model.UnknownCognition: unknown}, unknown.IsEmpty()
}

func uniqStrings(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string    { return &v }
