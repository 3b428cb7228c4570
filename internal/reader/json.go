package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"autodash/pkg/records"
)

// readJSON parses JSON-records input. Supported shapes:
//   - a root array of objects
//   - a root object holding one array-of-objects field (envelope pattern)
//   - a single root object (one record)
//   - NDJSON / concatenated top-level objects
//
// Nested objects are flattened with dotted keys; scalar arrays are joined
// with a comma so every cell stays scalar.
func readJSON(data []byte) (*records.RawSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // keep numbers textual; the cleaning engine re-parses them

	var root any
	if err := dec.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyFile
		}
		return nil, &ParseError{Format: "json", Err: err}
	}

	var objs []map[string]any
	switch v := root.(type) {
	case []any:
		for _, it := range v {
			if m, ok := it.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
	case map[string]any:
		if slice := findObjectSlice(v); slice != nil {
			objs = slice
		} else {
			objs = append(objs, v)
		}
	default:
		return nil, &ParseError{Format: "json", Err: fmt.Errorf("root must be an object or array, got %T", root)}
	}

	// NDJSON continuation: additional top-level objects after the first value.
	for {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			break
		}
		objs = append(objs, obj)
	}

	if len(objs) == 0 {
		return nil, ErrEmptyFile
	}

	flat := make([]map[string]string, 0, len(objs))
	keys := make(map[string]struct{})
	for _, obj := range objs {
		m := make(map[string]string)
		flattenObject("", obj, m)
		for k := range m {
			keys[k] = struct{}{}
		}
		flat = append(flat, m)
	}

	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]string, 0, len(flat))
	for _, m := range flat {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = m[c]
		}
		rows = append(rows, row)
	}

	return &records.RawSet{Columns: columns, Rows: rows}, nil
}

// findObjectSlice returns the first array-of-objects field of an envelope
// object, or nil when none exists.
func findObjectSlice(root map[string]any) []map[string]any {
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic envelope selection

	for _, k := range keys {
		arr, ok := root[k].([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		objs := make([]map[string]any, 0, len(arr))
		valid := true
		for _, elem := range arr {
			if elem == nil {
				continue
			}
			m, ok := elem.(map[string]any)
			if !ok {
				valid = false
				break
			}
			objs = append(objs, m)
		}
		if valid && len(objs) > 0 {
			return objs
		}
	}
	return nil
}

func flattenObject(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			flattenObject(key, t, out)
		default:
			out[key] = stringifyJSONScalar(v)
		}
	}
}

func stringifyJSONScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringifyJSONScalar(e))
		}
		return strings.Join(parts, ",")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
