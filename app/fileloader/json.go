package fileloader

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ReadJSON builds a table from a JSON document. options.JPath selects the
// array of records; without it the document root must be the array.
// The array may hold objects (headers are the sorted union of keys) or arrays
// (the first array is the header row). Newline-delimited JSON is accepted too.
func ReadJSON(data []byte, options FileOptions) (*interfaces.Table, error) {
	doc, err := parseJSONData(data)
	if err != nil {
		return nil, err
	}

	target := doc
	if options.JPath != "" {
		x, err := jp.ParseString(options.JPath)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression: %w", err)
		}
		results := x.Get(doc)
		if len(results) == 0 {
			return nil, fmt.Errorf("JSONPath expression %q returned no results", options.JPath)
		}
		target = results[0]
		if len(results) > 1 {
			// A wildcard path yields the matches themselves
			target = results
		}
	}

	arr, ok := target.([]any)
	if !ok {
		return nil, fmt.Errorf("JSON data must be an array of records; use a JSONPath to select one")
	}
	if len(arr) == 0 {
		return &interfaces.Table{Headers: []string{}, Records: []interfaces.Record{}}, nil
	}

	var header []string
	var rows [][]string
	switch arr[0].(type) {
	case map[string]any:
		header, rows = objectRows(arr)
	case []any:
		header, rows = arrayRows(arr)
		if options.NoHeaderRow {
			width := len(header)
			rows = append([][]string{header}, rows...)
			header = NormalizeHeaders(make([]string, width))
		}
	default:
		return nil, fmt.Errorf("JSON array must hold objects or arrays, found %T", arr[0])
	}
	return BuildTable(header, rows, options.ParseOptions()), nil
}

func objectRows(arr []any) ([]string, [][]string) {
	seen := map[string]bool{}
	var keys []string
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			for k := range obj {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}
	sort.Strings(keys)
	header := NormalizeHeaders(keys)

	rows := make([][]string, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = valueToString(obj[k])
		}
		rows = append(rows, row)
	}
	return header, rows
}

func arrayRows(arr []any) ([]string, [][]string) {
	var header []string
	rows := make([][]string, 0, len(arr))
	for i, item := range arr {
		list, ok := item.([]any)
		if !ok {
			continue
		}
		row := make([]string, len(list))
		for j, v := range list {
			row[j] = valueToString(v)
		}
		if i == 0 {
			header = NormalizeHeaders(row)
			continue
		}
		rows = append(rows, row)
	}
	return header, rows
}

// valueToString renders scalars as text and objects or arrays as compact JSON
func valueToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any, []any:
		return oj.JSON(v, &oj.Options{Sort: true})
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseJSONData parses a JSON document, falling back to one value per line
func parseJSONData(data []byte) (any, error) {
	data = bytes.TrimPrefix(data, []byte(byteOrderMark))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	doc, err := oj.Parse(data)
	if err == nil {
		return doc, nil
	}

	values, streamErr := parseJSONLines(data)
	if streamErr != nil || len(values) == 0 {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return values, nil
}

func parseJSONLines(data []byte) ([]any, error) {
	var values []any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := oj.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values = append(values, v)
	}
	return values, scanner.Err()
}
