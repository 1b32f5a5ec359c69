package operators

import (
	"strings"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// ParseParams decodes an operator's params string into a field map. The
// empty string is an empty params object. A string that arrived already
// wrapped in one extra layer of quoting (as happens when params pass
// through an upstream caller that JSON-encodes its own string arguments)
// is tolerated: ParseParams strips one layer of surrounding `"` or `'` and
// un-escapes `\"`/`\'` before decoding.
func ParseParams(s string) (map[string]value.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]value.Value{}, nil
	}

	if n := len(s); n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			inner := s[1 : n-1]
			inner = strings.ReplaceAll(inner, `\"`, `"`)
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			s = inner
		}
	}

	var v value.Value
	if err := v.UnmarshalJSON([]byte(s)); err != nil {
		return nil, herr.New(herr.InvalidParameters, "malformed params JSON: "+err.Error())
	}
	fields, ok := v.AsObject()
	if !ok {
		return nil, herr.New(herr.InvalidParameters, "params must decode to a JSON object")
	}
	return fields, nil
}

func requireString(params map[string]value.Value, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", herr.New(herr.InvalidParameters, "missing required parameter '"+key+"'")
	}
	s, ok := v.AsString()
	if !ok {
		return "", herr.New(herr.InvalidParameters, "parameter '"+key+"' must be a string")
	}
	return s, nil
}

func optionalString(params map[string]value.Value, key, fallback string) string {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	s, ok := v.AsString()
	if !ok {
		return fallback
	}
	return s
}
