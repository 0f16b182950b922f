package providers

import (
	"jls/internal/index"
	"jls/internal/javaparse"
)

// CodeLensKind distinguishes a references placeholder from a test-runner
// lens.
type CodeLensKind int

const (
	LensReferences CodeLensKind = iota
	LensRunAllTests
	LensRunTest
	LensDebugTest
)

// CodeLens is an unresolved lens placeholder; Resolve fills in its title.
type CodeLens struct {
	Kind  CodeLensKind
	Range javaparse.Range
	Owner string // qualified class name
	Name  string // method name, empty for class-level lenses
}

// CodeLenses parses (does not compile) the file and emits references and
// test-run lenses for each class and @Test-annotated method.
func CodeLenses(f *javaparse.File) []CodeLens {
	var lenses []CodeLens
	for _, d := range f.Types {
		lenses = append(lenses, classLenses(f, d)...)
	}
	return lenses
}

func classLenses(f *javaparse.File, d *javaparse.Decl) []CodeLens {
	var lenses []CodeLens
	owner := qualifiedTypeNameOf(f, d)
	lenses = append(lenses, CodeLens{Kind: LensReferences, Range: d.NameRange, Owner: owner})

	hasTests := false
	for _, m := range d.Children {
		if m.Kind != javaparse.KindMethod {
			if m.Kind == javaparse.KindClass || m.Kind == javaparse.KindInterface {
				lenses = append(lenses, classLenses(f, m)...)
			}
			continue
		}
		lenses = append(lenses, CodeLens{Kind: LensReferences, Range: m.NameRange, Owner: owner, Name: m.Name})
		if m.HasAnnotation("Test") {
			hasTests = true
			lenses = append(lenses,
				CodeLens{Kind: LensRunTest, Range: m.NameRange, Owner: owner, Name: m.Name},
				CodeLens{Kind: LensDebugTest, Range: m.NameRange, Owner: owner, Name: m.Name},
			)
		}
	}
	if hasTests {
		lenses = append(lenses, CodeLens{Kind: LensRunAllTests, Range: d.NameRange, Owner: owner})
	}
	return lenses
}

// ResolveReferencesLens performs a fast token-only count via the Index,
// stopping once it reaches 20, and returns a rendered "N references" title.
func ResolveReferencesLens(idx *index.Index, memberOrClassName string) string {
	files := idx.FilesContaining(memberOrClassName)
	count := 0
	for range files {
		count++
		if count >= 20 {
			return "20+ references"
		}
	}
	if count == 1 {
		return "1 reference"
	}
	if count == 0 {
		return "no references"
	}
	return itoa(count) + " references"
}

// LensTitle renders the static title for lens kinds that don't need
// resolution (test-runner lenses); references lenses are titled via
// ResolveReferencesLens instead.
func LensTitle(kind CodeLensKind) string {
	switch kind {
	case LensRunAllTests:
		return "Run All Tests"
	case LensRunTest:
		return "Run Test"
	case LensDebugTest:
		return "Debug Test"
	default:
		return ""
	}
}
