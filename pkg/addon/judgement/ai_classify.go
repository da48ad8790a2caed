package judgement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

const aiApprovedCognition = "ai_approved"

// AIClassifyConfig configures the AIClassify add-on. It is opt-in: a trial
// only reaches this add-on if it's configured at all, and Model defaults to
// the teacher's own default so an operator only needs an API key.
type AIClassifyConfig struct {
	APIKey string
	Model  string
}

// AIClassify asks a language model whether a trial's remaining "unknown"
// diff keys represent a semantically meaningful change, for cases a fixed
// ignore-list can't anticipate (renamed-but-equivalent fields, reordered
// arrays of equivalent objects). It never forces same->different, only
// different->same, so a model failure degrades to the engine's existing
// verdict rather than masking a real regression. Grounded on
// pkg/llm/gemini.go's client-construction and single-turn Chat pattern,
// generalized from "free-form chat reply" to a one-word verdict prompt.
type AIClassify struct {
	Config AIClassifyConfig
	client *genai.Client
}

// NewAIClassify constructs an AIClassify add-on from raw config.
func NewAIClassify(cfg map[string]interface{}) (*AIClassify, error) {
	ac := AIClassifyConfig{Model: "gemini-2.5-flash-lite"}
	if v, ok := cfg["api_key"].(string); ok {
		ac.APIKey = v
	}
	if v, ok := cfg["model"].(string); ok && v != "" {
		ac.Model = v
	}
	if ac.APIKey == "" {
		return nil, fmt.Errorf("judgement/ai_classify: api_key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  ac.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &AIClassify{Config: ac, client: client}, nil
}

func (a *AIClassify) Exec(ctx context.Context, p addon.JudgementPayload, ref addon.JudgementReference) (addon.JudgementPayload, error) {
	if p.RegardAsSame {
		return p, nil
	}
	unknown, ok := p.DiffsByCognition["unknown"]
	if !ok || unknown.IsEmpty() {
		return p, nil
	}

	prompt, err := a.buildPrompt(ref, unknown.Added, unknown.Changed, unknown.Removed)
	if err != nil {
		return p, nil
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}

	response, err := a.client.Models.GenerateContent(ctx, a.Config.Model, contents, nil)
	if err != nil {
		// A model-unavailable verdict must never flip a real diff to
		// "same"; fall through with the engine's existing classification.
		return p, nil
	}

	verdict := strings.ToLower(strings.TrimSpace(response.Text()))
	if strings.HasPrefix(verdict, "same") {
		// Move every remaining unknown path into its own cognition rather
		// than just flipping a flag: the engine re-derives regard_as_same
		// from whether "unknown" is empty, so clearing it here is what
		// actually makes the trial register as same.
		approved := p.DiffsByCognition[aiApprovedCognition]
		approved.Added = append(approved.Added, unknown.Added...)
		approved.Changed = append(approved.Changed, unknown.Changed...)
		approved.Removed = append(approved.Removed, unknown.Removed...)
		p.DiffsByCognition[aiApprovedCognition] = approved
		p.DiffsByCognition[model.UnknownCognition] = model.DiffKeys{}
		p.RegardAsSame = true
	}

	return p, nil
}

func (a *AIClassify) buildPrompt(ref addon.JudgementReference, added, changed, removed []string) (string, error) {
	oneJSON, err := json.Marshal(ref.DictOne)
	if err != nil {
		return "", err
	}
	otherJSON, err := json.Marshal(ref.DictOther)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Two HTTP responses for %s %s differ at these paths:
added: %v
changed: %v
removed: %v

Response one: %s
Response other: %s

Reply with exactly one word: "same" if the difference is not semantically
meaningful (formatting, field order, a timestamp, a generated id), or
"different" if it represents a real behavioral change.`,
		ref.Path, formatQS(ref.QS), added, changed, removed, oneJSON, otherJSON), nil
}

func formatQS(qs map[string][]string) string {
	if len(qs) == 0 {
		return ""
	}
	b, _ := json.Marshal(qs)
	return string(b)
}
