// internal/llm/providers/google/extract.go
package google

import (
	"bytes"
	"encoding/json"
	"strings"
)

func decode(body []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// extract returns candidates[0].content.parts[0].text, trimmed. Any missing
// key, short array or wrong type yields FallbackText and false.
func extract(doc interface{}) (string, bool) {
	v, ok := lookup(doc, "candidates", 0, "content", "parts", 0, "text")
	if !ok {
		return FallbackText, false
	}
	s, ok := v.(string)
	if !ok {
		return FallbackText, false
	}
	return strings.TrimSpace(s), true
}

// lookup walks a decoded JSON value. String steps index objects, int steps
// index arrays.
func lookup(v interface{}, path ...interface{}) (interface{}, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil, false
			}
			next, ok := obj[key]
			if !ok {
				return nil, false
			}
			cur = next
		case int:
			arr, ok := cur.([]interface{})
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

func lookupString(v interface{}, path ...interface{}) string {
	got, ok := lookup(v, path...)
	if !ok {
		return ""
	}
	s, _ := got.(string)
	return s
}

func lookupInt(v interface{}, path ...interface{}) int {
	got, ok := lookup(v, path...)
	if !ok {
		return 0
	}
	n, ok := got.(json.Number)
	if !ok {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(i)
}
