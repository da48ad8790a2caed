package log2reqs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	postman "github.com/rbretecher/go-postman-collection"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// Postman turns a Postman collection export into requests, walking the
// collection's folder tree and flattening every leaf item with a Request
// into a model.Request.
type Postman struct{}

// NewPostman constructs the Postman add-on; it takes no configuration.
func NewPostman(map[string]interface{}) (*Postman, error) {
	return &Postman{}, nil
}

func (pm *Postman) Exec(_ context.Context, p addon.Log2ReqsPayload) (addon.Log2ReqsPayload, error) {
	f, err := os.Open(p.File)
	if err != nil {
		return p, fmt.Errorf("opening %s: %w", p.File, err)
	}
	defer f.Close()

	collection, err := postman.ParseCollection(f)
	if err != nil {
		return p, fmt.Errorf("parsing postman collection %s: %w", p.File, err)
	}

	var out []model.Request
	var walk func(items []*postman.Items)
	walk = func(items []*postman.Items) {
		for _, item := range items {
			if len(item.Items) > 0 {
				walk(item.Items)
				continue
			}
			if item.Request == nil {
				continue
			}
			out = append(out, requestFromItem(item))
		}
	}
	walk(collection.Items)

	p.Requests = append(p.Requests, out...)
	return p, nil
}

func requestFromItem(item *postman.Items) model.Request {
	req := item.Request
	method := model.MethodGet
	if req.Method != "" {
		method = model.HTTPMethod(req.Method)
	}

	headers := map[string]string{}
	for _, h := range req.Header {
		headers[h.Key] = h.Value
	}

	qs := map[string][]string{}
	for _, q := range req.URL.Query {
		if q.Disabled {
			continue
		}
		qs[q.Key] = append(qs[q.Key], q.Value)
	}

	out := model.Request{
		Name:    item.Name,
		Method:  method,
		Path:    "/" + joinPath(req.URL.Path),
		QS:      qs,
		Headers: headers,
	}

	if req.Body != nil && req.Body.Raw != "" {
		var body interface{}
		if err := json.Unmarshal([]byte(req.Body.Raw), &body); err == nil {
			out.JSON = body
		}
	}

	return out
}

func joinPath(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "/"
		}
		out += url.PathEscape(s)
	}
	return out
}
