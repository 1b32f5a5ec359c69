package operators

import (
	"context"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/validation"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// validationValidate implements `validate`: {"schema":{...},"data":{...}}
// runs the schema-driven validation sub-engine and returns
// {"is_valid":bool,"errors":[...],"warnings":[...]}.
func validationValidate(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	schema, ok := params["schema"]
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "validate: missing 'schema'")
	}
	data, ok := params["data"]
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "validate: missing 'data'")
	}

	eng := validation.NewEngine()
	res, err := eng.Validate(schema, data)
	if err != nil {
		return value.Null(), err
	}
	return resultToValue(res), nil
}

// validationSchema implements `schema`: {"schema":{...}} parses the schema
// alone, surfacing a malformed schema as an error without requiring data
// to validate against it.
func validationSchema(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	schema, ok := params["schema"]
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "schema: missing 'schema'")
	}
	if _, err := validation.ParseSchema(schema); err != nil {
		return value.Null(), err
	}
	return value.Object(map[string]value.Value{"valid": value.Bool(true)}), nil
}

func resultToValue(res validation.Result) value.Value {
	errs := make([]value.Value, len(res.Errors))
	for i, e := range res.Errors {
		fields := map[string]value.Value{
			"field":   value.String(e.Field),
			"rule":    value.String(e.Rule),
			"message": value.String(e.Message),
		}
		if e.Value != nil {
			fields["value"] = *e.Value
		}
		if e.Context != "" {
			fields["context"] = value.String(e.Context)
		}
		errs[i] = value.Object(fields)
	}

	warns := make([]value.Value, len(res.Warnings))
	for i, w := range res.Warnings {
		warns[i] = value.Object(map[string]value.Value{
			"field":   value.String(w.Field),
			"message": value.String(w.Message),
		})
	}

	return value.Object(map[string]value.Value{
		"is_valid": value.Bool(res.IsValid),
		"errors":   value.Array(errs),
		"warnings": value.Array(warns),
	})
}
