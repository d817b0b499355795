package mapping

import (
	"encoding/json"
	"strings"
)

// ParseLocations turns a locations-array cell into an ordered list of names.
// Fallback chain for strings: JSON array first, then comma split. Empty and
// whitespace-only entries are dropped; unsupported inputs give an empty list.
func ParseLocations(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return keepNonEmpty(v)
	case []any:
		return stringifyElements(v)
	case string:
		return parseLocationString(v)
	case []byte:
		return parseLocationString(string(v))
	}
	return []string{}
}

func parseLocationString(s string) []string {
	if elems, ok := decodeJSONArray(s); ok {
		return stringifyElements(elems)
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeJSONArray(s string) ([]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var elems []any
	if err := dec.Decode(&elems); err != nil {
		return nil, false
	}
	// 拒绝 `["a"] trailing` 这类非严格 JSON
	if dec.More() {
		return nil, false
	}
	return elems, elems != nil
}

func stringifyElements(elems []any) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s := cellString(e); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func keepNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
