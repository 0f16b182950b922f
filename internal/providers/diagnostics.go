// Package providers implements the pure request handlers that answer
// editor requests from a compiled Task, the File Store, and the Token
// Index: diagnostics, completion, hover, definition, references, code
// actions, code lenses, rename, folding, and inlay hints.
package providers

import (
	"sort"
	"strings"

	"jls/internal/compiler"
	"jls/internal/javaparse"
)

// FileDiagnostics is the per-file diagnostics payload published to the
// editor, sorted by (severity, line, column).
type FileDiagnostics struct {
	URI         string
	Diagnostics []compiler.Diagnostic
}

// Lint builds a sorted diagnostics payload per file of a compiled task: the
// raw compiler diagnostics, unused-declaration warnings, and a final pass
// that culls warnings on lines already carrying an error.
func Lint(task *compiler.Task) []FileDiagnostics {
	byFile := make(map[string][]compiler.Diagnostic)
	for _, d := range task.Diagnostics() {
		byFile[d.URI] = append(byFile[d.URI], compiler.WidenToLine(d))
	}

	for path, f := range task.Files() {
		byFile[path] = append(byFile[path], unusedDiagnostics(f)...)
	}

	var out []FileDiagnostics
	for uri, diags := range byFile {
		diags = cullCascades(diags)
		sort.Slice(diags, func(i, j int) bool {
			if diags[i].Severity != diags[j].Severity {
				return diags[i].Severity < diags[j].Severity
			}
			if diags[i].Range.Start.Line != diags[j].Range.Start.Line {
				return diags[i].Range.Start.Line < diags[j].Range.Start.Line
			}
			return diags[i].Range.Start.Char < diags[j].Range.Start.Char
		})
		out = append(out, FileDiagnostics{URI: uri, Diagnostics: diags})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// cullCascades drops warning/info diagnostics that sit on a line that
// already carries a compiler error, the documented noise-cascade
// suppression.
func cullCascades(diags []compiler.Diagnostic) []compiler.Diagnostic {
	errorLines := make(map[int]bool)
	for _, d := range diags {
		if d.Severity == compiler.SeverityError {
			errorLines[d.Range.Start.Line] = true
		}
	}
	var out []compiler.Diagnostic
	for _, d := range diags {
		if d.Severity != compiler.SeverityError && errorLines[d.Range.Start.Line] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// unusedDiagnostics scans a parsed file's declarations for unused private
// fields, unused imports, unused private methods, unused non-public nested
// classes, and redundant throws, each carrying a stable diagnostic code.
// Unused local variables are not reported.
func unusedDiagnostics(f *javaparse.File) []compiler.Diagnostic {
	var diags []compiler.Diagnostic
	body := string(f.Source)

	for _, imp := range f.Imports {
		if imp.Wildcard || imp.Static {
			continue
		}
		simple := simpleNameOf(imp.Path)
		if !usedElsewhere(body, simple, imp.Path) {
			diags = append(diags, compiler.Diagnostic{
				URI:      f.Path,
				Severity: compiler.SeverityWarning,
				Message:  "unused import: " + imp.Path,
				Code:     compiler.CodeUnusedImport,
			})
		}
	}

	for _, decl := range f.AllDecls() {
		switch decl.Kind {
		case javaparse.KindClass, javaparse.KindInterface, javaparse.KindRecord:
			if decl.Parent != nil && !decl.HasModifier("public") && !usedOutsideDeclaration(body, decl.Name) {
				diags = append(diags, compiler.Diagnostic{
					URI:      f.Path,
					Range:    decl.NameRange,
					Severity: compiler.SeverityWarning,
					Message:  "unused class: " + decl.Name,
					Code:     compiler.CodeUnusedClass,
				})
			}
		case javaparse.KindField:
			if decl.HasModifier("private") && !usedOutsideDeclaration(body, decl.Name) {
				diags = append(diags, compiler.Diagnostic{
					URI:      f.Path,
					Range:    decl.NameRange,
					Severity: compiler.SeverityWarning,
					Message:  "unused field: " + decl.Name,
					Code:     compiler.CodeUnusedField,
				})
			}
		case javaparse.KindMethod:
			if decl.HasModifier("private") && !usedOutsideDeclaration(body, decl.Name) {
				diags = append(diags, compiler.Diagnostic{
					URI:      f.Path,
					Range:    decl.NameRange,
					Severity: compiler.SeverityWarning,
					Message:  "unused method: " + decl.Name,
					Code:     compiler.CodeUnusedMethod,
				})
			}
			for _, thrown := range decl.Throws {
				simple := simpleNameOf(thrown)
				if strings.Count(body, simple) <= 1 {
					diags = append(diags, compiler.Diagnostic{
						URI:      f.Path,
						Range:    decl.NameRange,
						Severity: compiler.SeverityWarning,
						Message:  "redundant throws: " + thrown,
						Code:     compiler.CodeUnusedThrows,
					})
				}
			}
		}
	}
	return diags
}

func simpleNameOf(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

func usedElsewhere(body, simple, qualified string) bool {
	rest := strings.Replace(body, "import "+qualified+";", "", 1)
	return strings.Contains(rest, simple)
}

func usedOutsideDeclaration(body, name string) bool {
	return strings.Count(body, name) > 1
}
