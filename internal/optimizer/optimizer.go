// Package optimizer runs level-gated, monotone transformation passes over
// a compiled IR: every level n runs all passes of levels below n, never
// changes observable semantics, and is deterministic (same input and
// level produce byte-identical output across runs).
package optimizer

import (
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
)

// Level is the optimization aggressiveness requested by a compile or
// optimize invocation.
type Level int

const (
	Zero Level = iota
	One
	Two
	Three
)

// Stats is the per-pass statistics report. It is threaded through each
// pass as an explicit out-parameter rather than stored on the optimizer,
// so a pass never needs a receiver beyond the IR it mutates.
type Stats struct {
	StringsDeduped      int
	ConstantsFolded     int
	DeclarationsPruned  int
	FieldsNormalized    int
	DeclarationsInlined int
	StepsMerged         int
}

// Optimize runs every pass gated at or below level against v. On a pass
// failure, optimization is all-or-nothing: the original IR is returned
// unchanged alongside the error, and no partial statistics are reported.
func Optimize(v *ir.IR, level Level) (*ir.IR, Stats, error) {
	if level < Zero || level > Three {
		return v, Stats{}, herr.New(herr.InvalidInput, "optimization level must be between 0 and 3")
	}
	if level == Zero {
		return v, Stats{}, nil
	}

	var stats Stats

	// Pass 1: string deduplication (level >= 1, always reached here since
	// level > Zero).
	dedupStrings(v, &stats)

	// Pass 2: constant folding (level >= 1). HELIX field values are
	// already literals; the grammar has no expression syntax, so there
	// are no arithmetic or string-concat sub-expressions in IR to fold.
	// The pass still runs, and always reports zero, to keep level-gating
	// symmetric with a grammar that might grow expression fields later.
	foldConstants(v, &stats)

	if level >= Two {
		pruneUnreachable(v, &stats)
		normalizeFields(v, &stats)
	}

	if level >= Three {
		inlineSingleUseContexts(v, &stats)
		mergeAdjacentSteps(v, &stats)
	}

	// Pruning, normalization, inlining and step merging can leave pool
	// entries that nothing references any more; a second deduplication
	// run drops them.
	if level >= Two {
		dedupStrings(v, &stats)
	}

	return v, stats, nil
}
