package validation

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"time"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// RuleSpec is one parsed rule: either a bare name ("required", "string",
// "email", ...) or a {"rule": name, ...params} object for rules that take
// arguments (string_length, numeric_range, array_length, pattern, enum,
// date_format, object, array_items, range, custom).
type RuleSpec struct {
	Name   string
	Params map[string]value.Value
}

// Schema maps a field name to the ordered list of rules applied to it.
type Schema map[string][]RuleSpec

// typeNames are the bare rule tokens that name one of the six Value kinds,
// shorthand for {"rule":"type","kind":name}.
var typeNames = map[string]bool{
	"string": true, "number": true, "bool": true,
	"null": true, "array": true, "object_kind": true,
}

// ParseSchema decodes a schema Value (an Object mapping field name to an
// Array of rule specs) into a Schema.
func ParseSchema(schemaValue value.Value) (Schema, error) {
	fields, ok := schemaValue.AsObject()
	if !ok {
		return nil, herr.New(herr.InvalidInput, "validation: schema must be a JSON object")
	}
	out := make(Schema, len(fields))
	for field, rulesValue := range fields {
		rules, ok := rulesValue.AsArray()
		if !ok {
			return nil, herr.New(herr.InvalidInput, "validation: schema field '"+field+"' must map to an array of rules")
		}
		specs := make([]RuleSpec, 0, len(rules))
		for _, r := range rules {
			spec, err := parseRuleSpec(r)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
		out[field] = specs
	}
	return out, nil
}

func parseRuleSpec(v value.Value) (RuleSpec, error) {
	if name, ok := v.AsString(); ok {
		if name == "object" {
			name = "object_kind" // bare "object" names the Value kind, not nested-object validation
		}
		return RuleSpec{Name: name, Params: map[string]value.Value{}}, nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return RuleSpec{}, herr.New(herr.InvalidInput, "validation: rule spec must be a string or an object")
	}
	name, ok := obj["rule"].AsString()
	if !ok {
		return RuleSpec{}, herr.New(herr.InvalidInput, "validation: rule object must carry a string 'rule' field")
	}
	return RuleSpec{Name: name, Params: obj}, nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// applyRule runs a single rule against a field's value (present reports
// whether the field occurred in data at all) and returns zero or more
// Errors — every rule is independent, so a field can fail several at once.
func (e *Engine) applyRule(field string, rule RuleSpec, v value.Value, present bool) []Error {
	fail := func(message string) []Error {
		var ptr *value.Value
		if present {
			cp := v
			ptr = &cp
		}
		return []Error{{Field: field, Rule: rule.Name, Message: message, Value: ptr}}
	}

	switch rule.Name {
	case "required":
		if !present {
			return fail(fmt.Sprintf("field %q is required", field))
		}
		return nil
	}

	// Every rule past this point is a no-op on an absent, non-required
	// field: absence is already reported (or tolerated) by "required".
	if !present {
		return nil
	}

	switch rule.Name {
	case "string", "number", "bool", "null", "array", "object_kind":
		want := rule.Name
		if want == "object_kind" {
			want = "object" // Kind.String() names the object case "object"
		}
		if v.Kind().String() != want {
			return fail(fmt.Sprintf("field %q must be of type %s, got %s", field, want, v.Kind()))
		}
		return nil
	case "type":
		want, _ := rule.Params["kind"].AsString()
		if v.Kind().String() != want {
			return fail(fmt.Sprintf("field %q must be of type %s, got %s", field, want, v.Kind()))
		}
		return nil
	case "string_length":
		s, ok := v.AsString()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a string", field))
		}
		return checkBounds(field, rule, float64(len(s)), "string_length")
	case "numeric_range":
		n, ok := v.AsNumber()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a number", field))
		}
		return checkBounds(field, rule, n, "numeric_range")
	case "array_length":
		arr, ok := v.AsArray()
		if !ok {
			return fail(fmt.Sprintf("field %q must be an array", field))
		}
		return checkBounds(field, rule, float64(len(arr)), "array_length")
	case "range":
		n, ok := v.AsNumber()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a number", field))
		}
		min, hasMin := rule.Params["min"].AsNumber()
		max, hasMax := rule.Params["max"].AsNumber()
		if !hasMin || !hasMax {
			return fail("range rule requires both 'min' and 'max'")
		}
		if n < min || n > max {
			return fail(fmt.Sprintf("field %q must be between %v and %v", field, min, max))
		}
		return nil
	case "pattern":
		s, ok := v.AsString()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a string", field))
		}
		pat, _ := rule.Params["pattern"].AsString()
		re, err := regexp.Compile(pat)
		if err != nil {
			return fail("pattern rule carries an invalid regular expression")
		}
		if !re.MatchString(s) {
			return fail(fmt.Sprintf("field %q does not match pattern %q", field, pat))
		}
		return nil
	case "enum":
		allowed, _ := rule.Params["values"].AsArray()
		for _, a := range allowed {
			if a.String() == v.String() {
				return nil
			}
		}
		return fail(fmt.Sprintf("field %q is not one of the allowed values", field))
	case "email":
		s, ok := v.AsString()
		if !ok || !emailPattern.MatchString(s) {
			return fail(fmt.Sprintf("field %q is not a valid email address", field))
		}
		return nil
	case "url":
		s, ok := v.AsString()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a string", field))
		}
		u, err := url.ParseRequestURI(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fail(fmt.Sprintf("field %q is not a valid URL", field))
		}
		return nil
	case "ipv4":
		s, ok := v.AsString()
		ip := net.ParseIP(s)
		if !ok || ip == nil || ip.To4() == nil {
			return fail(fmt.Sprintf("field %q is not a valid IPv4 address", field))
		}
		return nil
	case "ipv6":
		s, ok := v.AsString()
		ip := net.ParseIP(s)
		if !ok || ip == nil || ip.To4() != nil {
			return fail(fmt.Sprintf("field %q is not a valid IPv6 address", field))
		}
		return nil
	case "date_format":
		s, ok := v.AsString()
		if !ok {
			return fail(fmt.Sprintf("field %q must be a string", field))
		}
		layout, _ := rule.Params["format"].AsString()
		if layout == "" {
			layout = time.RFC3339
		}
		if _, err := time.Parse(layout, s); err != nil {
			return fail(fmt.Sprintf("field %q does not match date format %q", field, layout))
		}
		return nil
	case "object":
		obj, ok := v.AsObject()
		if !ok {
			return fail(fmt.Sprintf("field %q must be an object", field))
		}
		nested, err := ParseSchema(rule.Params["schema"])
		if err != nil {
			return fail("object rule carries an invalid nested schema")
		}
		nestedResult := e.evaluate(nested, obj)
		var errs []Error
		for _, ne := range nestedResult.Errors {
			ne.Field = field + "." + ne.Field
			errs = append(errs, ne)
		}
		return errs
	case "array_items":
		arr, ok := v.AsArray()
		if !ok {
			return fail(fmt.Sprintf("field %q must be an array", field))
		}
		itemRulesValue, _ := rule.Params["rules"].AsArray()
		itemRules := make([]RuleSpec, 0, len(itemRulesValue))
		for _, r := range itemRulesValue {
			spec, err := parseRuleSpec(r)
			if err != nil {
				return fail("array_items rule carries an invalid item rule")
			}
			itemRules = append(itemRules, spec)
		}
		var errs []Error
		for i, item := range arr {
			for _, ir := range itemRules {
				itemErrs := e.applyRule(fmt.Sprintf("%s[%d]", field, i), ir, item, true)
				errs = append(errs, itemErrs...)
			}
		}
		return errs
	case "custom":
		name, _ := rule.Params["name"].AsString()
		fn, ok := e.custom[name]
		if !ok {
			return fail(fmt.Sprintf("custom rule %q is not registered", name))
		}
		ok2, msg := fn(v)
		if !ok2 {
			if msg == "" {
				msg = fmt.Sprintf("field %q failed custom rule %q", field, name)
			}
			return fail(msg)
		}
		return nil
	default:
		return fail(fmt.Sprintf("unknown validation rule %q", rule.Name))
	}
}

// checkBounds applies an optional min/max pair (either side may be absent)
// to a numeric measurement derived from the field's value.
func checkBounds(field string, rule RuleSpec, measured float64, ruleName string) []Error {
	if min, ok := rule.Params["min"].AsNumber(); ok && measured < min {
		return []Error{{Field: field, Rule: ruleName, Message: fmt.Sprintf("field %q is below minimum %v", field, min)}}
	}
	if max, ok := rule.Params["max"].AsNumber(); ok && measured > max {
		return []Error{{Field: field, Rule: ruleName, Message: fmt.Sprintf("field %q exceeds maximum %v", field, max)}}
	}
	return nil
}
