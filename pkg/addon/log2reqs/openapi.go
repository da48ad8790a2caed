package log2reqs

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pb33f/libopenapi"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// OpenAPIConfig configures the OpenAPI add-on.
type OpenAPIConfig struct {
	// Methods restricts generated requests to these HTTP methods. Empty
	// means every GET, POST, PUT, DELETE and PATCH operation on the path;
	// other methods are never generated.
	Methods []string `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// OpenAPI synthesizes one request per (path, method) operation documented
// in an OpenAPI 3 document, using each parameter's example (or the schema's
// default) to fill in path and query values. It walks the document the way
// csv.go walks rows: one input file in, a flat request list out.
type OpenAPI struct {
	Config OpenAPIConfig
}

// NewOpenAPI constructs an OpenAPI add-on from raw config.
func NewOpenAPI(cfg map[string]interface{}) (*OpenAPI, error) {
	var oc OpenAPIConfig
	if raw, ok := cfg["methods"].([]interface{}); ok {
		for _, m := range raw {
			if s, ok := m.(string); ok {
				oc.Methods = append(oc.Methods, strings.ToUpper(s))
			}
		}
	}
	return &OpenAPI{Config: oc}, nil
}

func (o *OpenAPI) Exec(_ context.Context, p addon.Log2ReqsPayload) (addon.Log2ReqsPayload, error) {
	raw, err := os.ReadFile(p.File)
	if err != nil {
		return p, fmt.Errorf("reading %s: %w", p.File, err)
	}

	doc, err := libopenapi.NewDocument(raw)
	if err != nil {
		return p, fmt.Errorf("loading openapi document %s: %w", p.File, err)
	}

	model3, errs := doc.BuildV3Model()
	if len(errs) > 0 {
		return p, fmt.Errorf("building openapi v3 model for %s: %w", p.File, errs[0])
	}

	var out []model.Request
	for pair := model3.Model.Paths.PathItems.First(); pair != nil; pair = pair.Next() {
		path := pair.Key()
		item := pair.Value()
		for _, op := range operationsOf(item) {
			if !o.wantsMethod(op.method) {
				continue
			}
			out = append(out, requestFromOperation(path, op.method, op.operation))
		}
	}

	p.Requests = append(p.Requests, out...)
	return p, nil
}

func (o *OpenAPI) wantsMethod(method string) bool {
	if len(o.Config.Methods) == 0 {
		return true
	}
	for _, m := range o.Config.Methods {
		if m == method {
			return true
		}
	}
	return false
}

type pathOperation struct {
	method    string
	operation *v3.Operation
}

func operationsOf(item *v3.PathItem) []pathOperation {
	var ops []pathOperation
	add := func(method string, op *v3.Operation) {
		if op != nil {
			ops = append(ops, pathOperation{method: method, operation: op})
		}
	}
	add("GET", item.Get)
	add("POST", item.Post)
	add("PUT", item.Put)
	add("DELETE", item.Delete)
	add("PATCH", item.Patch)
	return ops
}

func requestFromOperation(path, method string, op *v3.Operation) model.Request {
	req := model.Request{
		Name:    operationName(op, method, path),
		Method:  model.HTTPMethod(method),
		Path:    path,
		QS:      map[string][]string{},
		Headers: map[string]string{},
	}

	for _, param := range op.Parameters {
		value := parameterExample(param)
		switch param.In {
		case "query":
			if value != "" {
				req.QS[param.Name] = []string{value}
			}
		case "header":
			if value != "" {
				req.Headers[param.Name] = value
			}
		case "path":
			if value != "" {
				req.Path = strings.ReplaceAll(req.Path, "{"+param.Name+"}", value)
			}
		}
	}

	return req
}

func operationName(op *v3.Operation, method, path string) string {
	if op.OperationId != "" {
		return op.OperationId
	}
	return method + " " + path
}

func parameterExample(param *v3.Parameter) string {
	if param.Example != nil {
		return fmt.Sprintf("%v", param.Example.Value)
	}
	if param.Schema != nil && param.Schema.Schema() != nil {
		schema := param.Schema.Schema()
		if schema.Default != nil {
			return fmt.Sprintf("%v", schema.Default.Value)
		}
		if len(schema.Enum) > 0 {
			enums := make([]string, 0, len(schema.Enum))
			for _, e := range schema.Enum {
				enums = append(enums, fmt.Sprintf("%v", e.Value))
			}
			sort.Strings(enums)
			return enums[0]
		}
	}
	return ""
}
