package providers

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jls/internal/compiler"
	"jls/internal/javaparse"
	"jls/internal/lombok"
)

// ReferenceTarget describes what find-references is searching for: a type,
// a field (with its accessor name aliases), or a method.
type ReferenceTarget struct {
	Kind           compiler.ElementKind
	QualifiedOwner string
	Name           string
	AccessorNames  []string
}

// referenceNodeTypes are the syntactic shapes find-references scans for a
// name match: plain identifiers, member selects, constructor calls, and
// method references.
var referenceNodeTypes = map[string]bool{
	"identifier":             true,
	"field_access":           true,
	"object_creation_expression": true,
	"method_invocation":      true,
	"method_reference":       true,
}

// BuildReferenceTarget classifies the element at (line, char), widening a
// field target with its conventional getter/setter names so references to
// generated accessors are found alongside the field itself.
func BuildReferenceTarget(task *compiler.Task, path string, line, char int) *ReferenceTarget {
	el := task.ElementAt(path, line, char)
	if el == nil {
		return nil
	}
	t := &ReferenceTarget{Kind: el.Kind, QualifiedOwner: el.QualifiedOwner, Name: el.Decl.Name}
	if el.Kind == compiler.ElementField {
		param := javaparse.Param{Name: el.Decl.Name, Type: el.Decl.FieldType}
		t.AccessorNames = []string{lombok.GetterName(param), lombok.SetterName(param)}
	}
	if el.Kind == compiler.ElementMethod {
		if field, owner, ok := accessorBackingField(el); ok {
			t.Kind = compiler.ElementField
			t.Name = field.Name
			t.QualifiedOwner = owner
			param := javaparse.Param{Name: field.Name, Type: field.FieldType}
			t.AccessorNames = []string{lombok.GetterName(param), lombok.SetterName(param), el.Decl.Name}
		}
	}
	return t
}

// accessorBackingField reports whether method el looks like a getter or
// setter for a sibling field, routing references on a generated accessor
// to the backing field's reference set.
func accessorBackingField(el *compiler.Element) (*javaparse.Decl, string, bool) {
	owner := el.Decl.Parent
	if owner == nil {
		return nil, "", false
	}
	for _, sibling := range owner.Children {
		if sibling.Kind != javaparse.KindField {
			continue
		}
		param := javaparse.Param{Name: sibling.Name, Type: sibling.FieldType}
		if el.Decl.Name == lombok.GetterName(param) || el.Decl.Name == lombok.SetterName(param) {
			return sibling, el.QualifiedOwner, true
		}
	}
	return nil, "", false
}

// FindReferences scans candidate files (selected via the façade's
// token/import-based candidate filters) for syntax nodes whose text
// matches target's name or one of its accessor aliases, deduplicating by
// (uri, range) and excluding matches inside annotation trees.
func FindReferences(task *compiler.Task, facade *compiler.Facade, target *ReferenceTarget) []Location {
	if target == nil {
		return nil
	}

	var candidates []string
	if target.Kind == compiler.ElementType {
		candidates = facade.FindTypeReferences(target.QualifiedOwner)
	} else {
		candidates = facade.FindMemberReferences(target.QualifiedOwner, target.Name)
	}

	names := append([]string{target.Name}, target.AccessorNames...)
	seen := make(map[string]bool)
	var out []Location

	for _, path := range candidates {
		f, ok := task.Files()[path]
		if !ok {
			continue
		}
		matches := scanForNames(f, names)
		for _, loc := range matches {
			key := loc.URI + ":" + rangeKey(loc.Range)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, loc)
		}
	}
	return out
}

func rangeKey(r javaparse.Range) string {
	return itoa(r.Start.Line) + ":" + itoa(r.Start.Char) + "-" + itoa(r.End.Line) + ":" + itoa(r.End.Char)
}

func scanForNames(f *javaparse.File, names []string) []Location {
	var out []Location
	if f.Tree == nil {
		return out
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if referenceNodeTypes[n.Type()] || n.Type() == "identifier" {
			text := string(f.Source[n.StartByte():n.EndByte()])
			if containsName(names, text) && !insideAnnotation(n) {
				out = append(out, Location{URI: f.Path, Range: javaparse.Range{
					Start: javaparse.Position{Line: int(n.StartPoint().Row), Char: int(n.StartPoint().Column)},
					End:   javaparse.Position{Line: int(n.EndPoint().Row), Char: int(n.EndPoint().Column)},
				}})
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(f.Tree.RootNode())
	return out
}

func containsName(names []string, text string) bool {
	for _, n := range names {
		if n == text {
			return true
		}
	}
	return false
}

func insideAnnotation(n *sitter.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if strings.Contains(cur.Type(), "annotation") {
			return true
		}
	}
	return false
}
