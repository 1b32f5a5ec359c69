package operators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// stringConcat implements `concat`: {"items":[...],"sep":".."} joins every
// item's string rendering with the given separator (default "").
func stringConcat(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	items, ok := params["items"].AsArray()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "concat: 'items' must be an array")
	}
	sep := optionalString(params, "sep", "")
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return value.String(strings.Join(parts, sep)), nil
}

// stringSplit implements `split`: {"source":"..","sep":".."}.
func stringSplit(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	sep := optionalString(params, "sep", ",")
	parts := strings.Split(src, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.Array(out), nil
}

// stringReplace implements `replace`: {"source":"..","from":"..","to":".."}.
func stringReplace(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	from, err := requireString(params, "from")
	if err != nil {
		return value.Null(), err
	}
	to := optionalString(params, "to", "")
	return value.String(strings.ReplaceAll(src, from, to)), nil
}

// stringTrim implements `trim`: {"source":".."} strips leading/trailing
// whitespace, or the exact "cutset" param if one is given.
func stringTrim(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	if cutset, ok := params["cutset"]; ok {
		c, _ := cutset.AsString()
		return value.String(strings.Trim(src, c)), nil
	}
	return value.String(strings.TrimSpace(src)), nil
}

func stringUpper(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	return value.String(strings.ToUpper(src)), nil
}

func stringLower(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	return value.String(strings.ToLower(src)), nil
}

// stringHash implements `hash`: {"source":".."} returns a hex-encoded
// SHA-256 digest, deterministic for equal input.
func stringHash(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	sum := sha256.Sum256([]byte(src))
	return value.String(hex.EncodeToString(sum[:])), nil
}

// stringFormat implements `format`: {"template":"Hello %s, you are %v","args":[...]}.
// Args are substituted positionally using fmt verbs the template names.
func stringFormat(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	tmpl, err := requireString(params, "template")
	if err != nil {
		return value.Null(), err
	}
	args, _ := params["args"].AsArray()
	anyArgs := make([]interface{}, len(args))
	for i, a := range args {
		anyArgs[i] = a.String()
	}
	return value.String(fmt.Sprintf(tmpl, anyArgs...)), nil
}
