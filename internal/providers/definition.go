package providers

import (
	"context"
	"strings"

	"jls/internal/compiler"
	"jls/internal/filestore"
	"jls/internal/javaparse"
)

// Location is a file + range result, mirroring LSP's Location shape without
// depending on the transport package.
type Location struct {
	URI   string
	Range javaparse.Range
}

// Definition locates the element at (line, char) and classifies it as
// local, member, or type to pick the right resolution strategy.
func Definition(task *compiler.Task, facade *compiler.Facade, store *filestore.Store, path string, line, char int) *Location {
	f, ok := task.Files()[path]
	if !ok {
		return nil
	}
	el := task.ElementAt(path, line, char)
	if el == nil {
		return definitionViaMethodChain(task, f, line, char)
	}

	switch el.Kind {
	case compiler.ElementType:
		return definitionOfType(task, facade, store, el)
	case compiler.ElementField, compiler.ElementEnumConstant:
		return &Location{URI: el.File.Path, Range: el.Decl.NameRange}
	case compiler.ElementMethod:
		if loc := definitionOfRecordAccessor(el); loc != nil {
			return loc
		}
		return &Location{URI: el.File.Path, Range: el.Decl.NameRange}
	default:
		return &Location{URI: el.File.Path, Range: el.Decl.NameRange}
	}
}

func definitionOfType(task *compiler.Task, facade *compiler.Facade, store *filestore.Store, el *compiler.Element) *Location {
	if d, pf, ok := task.FindTypeDeclaration(el.QualifiedOwner); ok {
		return &Location{URI: pf.Path, Range: d.NameRange}
	}
	if facade == nil {
		return &Location{URI: el.File.Path, Range: el.Decl.NameRange}
	}
	if d, pf, sourceless := facade.FindAnywhere(el.QualifiedOwner); !sourceless && d != nil {
		return &Location{URI: pf.Path, Range: d.NameRange}
	}
	return &Location{URI: el.File.Path, Range: el.Decl.NameRange}
}

// definitionOfRecordAccessor implements the record-accessor fallback: a
// record's implicit accessor method `name()` maps to the declaration of the
// record component with the same name.
func definitionOfRecordAccessor(el *compiler.Element) *Location {
	owner := el.Decl.Parent
	if owner == nil || owner.Kind != javaparse.KindRecord {
		return nil
	}
	for _, comp := range owner.RecordComps {
		if comp.Name == el.Decl.Name {
			return &Location{URI: el.File.Path, Range: owner.NameRange}
		}
	}
	return nil
}

// definitionViaMethodChain handles `Ident.getFoo()` chains whose receiver
// type could not be resolved by the normal element lookup (an ERROR-typed
// receiver): it reads the field's declared type from scope and recurses
// into that type's accessor.
func definitionViaMethodChain(task *compiler.Task, f *javaparse.File, line, char int) *Location {
	node := javaparse.NodeAt(f.Tree, line, char)
	if node == nil {
		return nil
	}
	parent := node.Parent()
	if parent == nil || parent.Type() != "field_access" {
		return nil
	}
	objectNode := parent.ChildByFieldName("object")
	fieldNode := parent.ChildByFieldName("field")
	if objectNode == nil || fieldNode == nil {
		return nil
	}
	receiverName := string(f.Source[objectNode.StartByte():objectNode.EndByte()])
	memberName := string(f.Source[fieldNode.StartByte():fieldNode.EndByte()])

	d := f.DeclAt(line, char)
	for _, scoped := range task.ScopeAt(f.Path, line, char) {
		if scoped.Name != receiverName {
			continue
		}
		owner := compiler.Erasure(scoped.FieldType)
		members := task.MembersOf(qualifyForChain(f, d, owner))
		for _, m := range members {
			if m.Name == memberName {
				return &Location{URI: f.Path, Range: m.NameRange}
			}
		}
	}
	return nil
}

func qualifyForChain(f *javaparse.File, from *javaparse.Decl, typeName string) string {
	if strings.Contains(typeName, ".") {
		return typeName
	}
	if f.Package != "" {
		return f.Package + "." + typeName
	}
	return typeName
}

// DefinitionOfConstructorCall maps a new-class expression to the matching
// constructor by argument count.
func DefinitionOfConstructorCall(task *compiler.Task, ownerQualified string, argCount int) *Location {
	for _, m := range task.MembersOf(ownerQualified) {
		if m.Kind == javaparse.KindConstructor && len(m.Params) == argCount {
			return &Location{URI: "", Range: m.NameRange}
		}
	}
	return nil
}

// ExtractJarEntryToTempFile materializes a JAR-backed source entry (used
// for definitions resolving into library sources) to a temp file and
// returns its path. ctx bounds the underlying archive read.
func ExtractJarEntryToTempFile(ctx context.Context, jarPath, entryName string) (string, error) {
	return extractJarEntry(ctx, jarPath, entryName)
}
