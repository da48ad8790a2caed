package judgement

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

const schemaViolationCognition = "schema_violation"

// SchemaConformanceConfig configures the SchemaConformance add-on.
type SchemaConformanceConfig struct {
	// SchemaFile is a file:// or http(s):// JSON schema reference, passed
	// straight through to gojsonschema.NewReferenceLoader.
	SchemaFile string
}

// SchemaConformance validates both sides' structured responses against a
// shared JSON schema, recording any field path that fails validation on
// either side under the "schema_violation" cognition bucket — a
// differential-testing analog of the teacher's SchemaConformanceTool, which
// checks one implementation's responses against its documented schema.
// Grounded on pkg/core/tools/schema_conformance/tool.go's conformance-check
// shape (endpoints in, violations out), using the pack's real JSON Schema
// validator in place of the teacher's simulated check.
type SchemaConformance struct {
	Config SchemaConformanceConfig
	schema *gojsonschema.Schema
}

// NewSchemaConformance constructs a SchemaConformance add-on from raw config.
func NewSchemaConformance(cfg map[string]interface{}) (*SchemaConformance, error) {
	sc := SchemaConformanceConfig{}
	if v, ok := cfg["schema_file"].(string); ok {
		sc.SchemaFile = v
	}
	if sc.SchemaFile == "" {
		return nil, fmt.Errorf("judgement/schema: schema_file is required")
	}

	loader := gojsonschema.NewReferenceLoader(sc.SchemaFile)
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("loading json schema %s: %w", sc.SchemaFile, err)
	}

	return &SchemaConformance{Config: sc, schema: schema}, nil
}

func (s *SchemaConformance) Exec(_ context.Context, p addon.JudgementPayload, ref addon.JudgementReference) (addon.JudgementPayload, error) {
	violations := map[string]struct{}{}
	s.collectViolations(ref.DictOne, violations)
	s.collectViolations(ref.DictOther, violations)

	if len(violations) == 0 {
		return p, nil
	}

	bucket := p.DiffsByCognition[schemaViolationCognition]
	for field := range violations {
		bucket.Changed = append(bucket.Changed, field)
	}

	if p.DiffsByCognition == nil {
		p.DiffsByCognition = model.DiffsByCognition{}
	}
	p.DiffsByCognition[schemaViolationCognition] = bucket

	return p, nil
}

func (s *SchemaConformance) collectViolations(doc interface{}, out map[string]struct{}) {
	if doc == nil {
		return
	}
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil || result.Valid() {
		return
	}
	for _, re := range result.Errors() {
		out[re.Field()] = struct{}{}
	}
}
