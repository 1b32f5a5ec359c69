package bundler

import (
	"github.com/cyber-boost/helix-sub000/internal/ast"
	"github.com/cyber-boost/helix-sub000/internal/herr"
)

// mergeKinds are the top-level declaration kinds whose Name must be
// unique across every file in a bundle (project carries no name and is
// exempt: multiple project blocks simply contribute their fields
// independently, same as a single-file compile).
var mergeKinds = map[ast.DeclKind]bool{
	ast.KindAgent:    true,
	ast.KindWorkflow: true,
	ast.KindContext:  true,
	ast.KindCrew:     true,
	ast.KindMemory:   true,
	ast.KindPipeline: true,
}

// isOverride reports whether d carries the bundler's override marker.
// HELIX's grammar has no dedicated annotation syntax, so override is
// expressed as an ordinary boolean field (`override = true`) on the
// declaration; the field is stripped from the merged declaration before
// building, since it is a bundler-only marker with no IR counterpart.
func isOverride(d *ast.Decl) bool {
	v, ok := d.Field("override")
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}

func stripOverrideField(d *ast.Decl) *ast.Decl {
	if _, ok := d.Field("override"); !ok {
		return d
	}
	cp := *d
	cp.Fields = make([]ast.Field, 0, len(d.Fields)-1)
	for _, f := range d.Fields {
		if f.Key == "override" {
			continue
		}
		cp.Fields = append(cp.Fields, f)
	}
	return &cp
}

type symbolKey struct {
	kind ast.DeclKind
	name string
}

// merge concatenates every file's top-level declarations in file order,
// rejecting a duplicate (kind, name) pair across files unless exactly one
// of the two carries `override = true`, in which case that one wins and
// the other is discarded.
func merge(files []string, asts []*ast.File) (*ast.File, error) {
	type seen struct {
		decl     *ast.Decl
		file     string
		override bool
	}
	owners := map[symbolKey]seen{}
	out := &ast.File{}

	for i, f := range asts {
		for _, d := range f.Decls {
			if !mergeKinds[d.Kind] {
				out.Decls = append(out.Decls, d)
				continue
			}

			key := symbolKey{kind: d.Kind, name: d.Name}
			prior, exists := owners[key]
			if !exists {
				clean := stripOverrideField(d)
				owners[key] = seen{decl: clean, file: files[i], override: isOverride(d)}
				continue
			}

			priorOverride := prior.override
			thisOverride := isOverride(d)
			switch {
			case thisOverride && !priorOverride:
				owners[key] = seen{decl: stripOverrideField(d), file: files[i], override: true}
			case priorOverride && !thisOverride:
				// keep prior, discard this one
			default:
				return nil, herr.DuplicateErr(d.Name, []string{prior.file, files[i]})
			}
		}
	}

	// Re-walk in file order, emitting each merge-tracked decl exactly once,
	// at the position of the file that currently owns it, so bundle output
	// stays deterministic under lexicographic file order.
	emitted := map[symbolKey]bool{}
	out.Decls = nil
	for i, f := range asts {
		for _, d := range f.Decls {
			if !mergeKinds[d.Kind] {
				out.Decls = append(out.Decls, d)
				continue
			}
			key := symbolKey{kind: d.Kind, name: d.Name}
			if emitted[key] {
				continue
			}
			owner := owners[key]
			if owner.file != files[i] {
				continue
			}
			emitted[key] = true
			out.Decls = append(out.Decls, owner.decl)
		}
	}

	return out, nil
}
