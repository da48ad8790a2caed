// Package log2reqs holds built-in log2reqs add-ons: ways of turning one
// input file into a []model.Request.
package log2reqs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/blackcoderx/diffrun/pkg/addon"
	"github.com/blackcoderx/diffrun/pkg/model"
)

// CSV reads a delimited file of request descriptors. Its header row names
// the columns it understands: name, method, path, query (a raw query
// string, multi-valued keys repeat), json (a raw JSON body). Grounded on
// data_driven_engine/data_loader.go's file-backed data source concept
// (no CSV library appears anywhere in the pack, so this follows every
// pack repo's own default of stdlib encoding/csv).
type CSV struct{}

// NewCSV constructs the CSV add-on; it takes no configuration.
func NewCSV(map[string]interface{}) (*CSV, error) {
	return &CSV{}, nil
}

func (c *CSV) Exec(_ context.Context, p addon.Log2ReqsPayload) (addon.Log2ReqsPayload, error) {
	f, err := os.Open(p.File)
	if err != nil {
		return p, fmt.Errorf("opening %s: %w", p.File, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return p, fmt.Errorf("parsing csv %s: %w", p.File, err)
	}
	if len(rows) == 0 {
		return p, nil
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[h] = i
	}

	get := func(row []string, col string) (string, bool) {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], row[idx] != ""
	}

	var out []model.Request
	for _, row := range rows[1:] {
		req := model.Request{Method: model.MethodGet}
		if v, ok := get(row, "name"); ok {
			req.Name = v
		}
		if v, ok := get(row, "method"); ok {
			req.Method = model.HTTPMethod(v)
		}
		if v, ok := get(row, "path"); ok {
			req.Path = v
		}
		if v, ok := get(row, "query"); ok {
			values, err := url.ParseQuery(v)
			if err != nil {
				return p, fmt.Errorf("parsing query column %q: %w", v, err)
			}
			req.QS = map[string][]string(values)
		}
		if v, ok := get(row, "json"); ok {
			var body interface{}
			if err := json.Unmarshal([]byte(v), &body); err != nil {
				return p, fmt.Errorf("parsing json column: %w", err)
			}
			req.JSON = body
		}
		out = append(out, req)
	}

	p.Requests = append(p.Requests, out...)
	return p, nil
}
