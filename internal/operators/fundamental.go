package operators

import (
	"context"
	"encoding/base64"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// fundamentalVar implements the `@var` operator: {"action":"get","name":..}
// reads the engine's variable store, {"action":"set","name":..,"value":..}
// writes it and echoes the stored value back.
func fundamentalVar(_ context.Context, e *Engine, params map[string]value.Value) (value.Value, error) {
	action := optionalString(params, "action", "get")
	name, err := requireString(params, "name")
	if err != nil {
		return value.Null(), err
	}

	switch action {
	case "get":
		v, ok := e.getVar(name)
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	case "set":
		v := params["value"]
		e.setVar(name, v)
		return v, nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "var: unknown action '"+action+"'")
	}
}

// fundamentalMemory implements `@memory`, the same get/set contract as
// `@var` against the engine's separate memory store and lock.
func fundamentalMemory(_ context.Context, e *Engine, params map[string]value.Value) (value.Value, error) {
	action := optionalString(params, "action", "get")
	name, err := requireString(params, "name")
	if err != nil {
		return value.Null(), err
	}

	switch action {
	case "get":
		v, ok := e.getMemory(name)
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	case "set":
		v := params["value"]
		e.setMemory(name, v)
		return v, nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "memory: unknown action '"+action+"'")
	}
}

// fundamentalEnv implements `@env`: {"name":...} reads an OS environment
// variable, returning Null if it is unset.
func fundamentalEnv(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	name, err := requireString(params, "name")
	if err != nil {
		return value.Null(), err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return value.Null(), nil
	}
	return value.String(v), nil
}

// fundamentalDate implements `@date`. When params carries an integer
// "timestamp" (unix seconds), formatting is a pure function of that input;
// omitting it falls back to the wall clock, which is the one place in this
// category that cannot be made deterministic without caller-supplied input.
func fundamentalDate(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	format := optionalString(params, "format", time.RFC3339)
	var t time.Time
	if ts, ok := params["timestamp"]; ok {
		secs, ok := ts.AsNumber()
		if !ok {
			return value.Null(), herr.New(herr.InvalidParameters, "date: timestamp must be a number")
		}
		t = time.Unix(int64(secs), 0).UTC()
	} else {
		t = time.Now().UTC()
	}
	return value.String(t.Format(format)), nil
}

// fundamentalFile implements `file`, a side-effecting operator:
// {"action":"read","path":...} or {"action":"write","path":...,"content":...}.
func fundamentalFile(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	action := optionalString(params, "action", "read")
	path, err := requireString(params, "path")
	if err != nil {
		return value.Null(), err
	}

	switch action {
	case "read":
		data, err := os.ReadFile(path)
		if err != nil {
			return value.Null(), herr.Wrap(herr.Execution, err, "file: failed to read "+path)
		}
		return value.String(string(data)), nil
	case "write":
		content := optionalString(params, "content", "")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return value.Null(), herr.Wrap(herr.Execution, err, "file: failed to write "+path)
		}
		return value.String(path), nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "file: unknown action '"+action+"'")
	}
}

// fundamentalQuery implements `query`, the engine's second side-effecting
// operator: {"name":...} reads a binding from the shared memory store, the
// only engine-owned state a "query" against this package can meaningfully
// address without reintroducing an external datastore wrapper.
func fundamentalQuery(_ context.Context, e *Engine, params map[string]value.Value) (value.Value, error) {
	name, err := requireString(params, "name")
	if err != nil {
		return value.Null(), err
	}
	v, ok := e.getMemory(name)
	if !ok {
		return value.Null(), herr.NotFoundErr("query: no memory binding named '" + name + "'")
	}
	return v, nil
}

// fundamentalJSON implements `json`: {"action":"parse","source":...} decodes
// a JSON string into a Value; {"action":"stringify","value":...} encodes a
// Value back to its compact JSON string form.
func fundamentalJSON(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	action := optionalString(params, "action", "parse")
	switch action {
	case "parse":
		src, err := requireString(params, "source")
		if err != nil {
			return value.Null(), err
		}
		var v value.Value
		if err := v.UnmarshalJSON([]byte(src)); err != nil {
			return value.Null(), herr.New(herr.InvalidParameters, "json: malformed source: "+err.Error())
		}
		return v, nil
	case "stringify":
		v := params["value"]
		data, err := v.MarshalJSON()
		if err != nil {
			return value.Null(), herr.Wrap(herr.Execution, err, "json: failed to stringify value")
		}
		return value.String(string(data)), nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "json: unknown action '"+action+"'")
	}
}

// fundamentalBase64 implements `base64`: {"action":"encode"/"decode","data":...}.
func fundamentalBase64(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	action := optionalString(params, "action", "encode")
	data, err := requireString(params, "data")
	if err != nil {
		return value.Null(), err
	}

	switch action {
	case "encode":
		return value.String(base64.StdEncoding.EncodeToString([]byte(data))), nil
	case "decode":
		out, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return value.Null(), herr.New(herr.InvalidParameters, "base64: malformed input: "+err.Error())
		}
		return value.String(string(out)), nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "base64: unknown action '"+action+"'")
	}
}

// fundamentalUUID implements `uuid`: always returns a fresh random (v4)
// identifier. No params are consulted.
func fundamentalUUID(_ context.Context, _ *Engine, _ map[string]value.Value) (value.Value, error) {
	return value.String(uuid.New().String()), nil
}
