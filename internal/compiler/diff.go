package compiler

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedSourceDiff renders a unified diff of two decompiled HELIX
// sources, reusing testify's own diff dependency rather than hand-
// rolling a line-diff algorithm.
func unifiedSourceDiff(a, b string) (string, error) {
	if a == b {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "a",
		ToFile:   "b",
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
