package compiler

import (
	"strings"

	"jls/internal/javaparse"
	"jls/internal/lombok"
)

// ElementKind classifies what a resolved path in a compiled tree refers to.
type ElementKind int

const (
	ElementUnknown ElementKind = iota
	ElementType
	ElementMethod
	ElementField
	ElementLocal
	ElementParameter
	ElementEnumConstant
)

// Element is the semantic-query result for a tree position: the declaration
// it resolves to, if any, plus enough context for providers to act on it
// without re-walking the tree.
type Element struct {
	Kind ElementKind
	Decl *javaparse.Decl
	File *javaparse.File
	// QualifiedOwner is the owning type's qualified name, populated for
	// members (methods/fields/enum constants).
	QualifiedOwner string
}

// Task is a short-lived lease over a batch of compiled sources: it owns the
// parsed trees, the diagnostics produced, and the declared-symbol table used
// to answer semantic queries. A Task must be closed before the owning Facade
// can issue another one.
type Task struct {
	facade      *Facade
	files       map[string]*javaparse.File
	order       []string
	diagnostics []Diagnostic
	types       map[string]typeEntry // qualifiedName -> entry
	apDisabled  bool
	closed      bool
}

type typeEntry struct {
	decl *javaparse.Decl
	file *javaparse.File
}

// Files returns the compilation-unit roots as a path -> parsed File map.
// Must not be retained past Close.
func (t *Task) Files() map[string]*javaparse.File { return t.files }

// Diagnostics returns every diagnostic produced for this compile.
func (t *Task) Diagnostics() []Diagnostic { return t.diagnostics }

// APDisabled reports whether this task ran with annotation processing
// (Lombok synthetic-member support) disabled, which happens only after an
// AP-fault retry.
func (t *Task) APDisabled() bool { return t.apDisabled }

// Close releases the lease. Subsequent queries on this Task are invalid; the
// façade enforces that by refusing to hand out a closed task again.
func (t *Task) Close() {
	t.closed = true
	for _, f := range t.files {
		f.Close()
	}
}

// ElementAt resolves the innermost declaration covering (line, char) in the
// file at path, classifying its kind.
func (t *Task) ElementAt(path string, line, char int) *Element {
	f, ok := t.files[path]
	if !ok {
		return nil
	}
	d := f.DeclAt(line, char)
	if d == nil {
		return nil
	}
	return t.elementForDecl(d, f)
}

func (t *Task) elementForDecl(d *javaparse.Decl, f *javaparse.File) *Element {
	switch d.Kind {
	case javaparse.KindClass, javaparse.KindInterface, javaparse.KindEnum, javaparse.KindRecord, javaparse.KindAnnotationType:
		return &Element{Kind: ElementType, Decl: d, File: f, QualifiedOwner: qualifiedTypeName(f, d)}
	case javaparse.KindMethod, javaparse.KindConstructor:
		return &Element{Kind: ElementMethod, Decl: d, File: f, QualifiedOwner: qualifiedTypeName(f, d.Parent)}
	case javaparse.KindField:
		return &Element{Kind: ElementField, Decl: d, File: f, QualifiedOwner: qualifiedTypeName(f, d.Parent)}
	case javaparse.KindEnumConstant:
		return &Element{Kind: ElementEnumConstant, Decl: d, File: f, QualifiedOwner: qualifiedTypeName(f, d.Parent)}
	default:
		return &Element{Kind: ElementUnknown, Decl: d, File: f}
	}
}

// qualifiedTypeName walks up to the nearest type Decl and prefixes it with
// the file's package, e.g. "com.example.Outer.Inner".
func qualifiedTypeName(f *javaparse.File, d *javaparse.Decl) string {
	if d == nil {
		return f.Package
	}
	name := d.QualifiedName()
	if f.Package == "" {
		return name
	}
	return f.Package + "." + name
}

// TypeOf returns the declared type name of a member/local at (line, char):
// a field's FieldType, a method's ReturnType, or "" for a type itself (its
// own type is itself).
func (t *Task) TypeOf(path string, line, char int) string {
	el := t.ElementAt(path, line, char)
	if el == nil {
		return ""
	}
	switch el.Kind {
	case ElementField:
		return el.Decl.FieldType
	case ElementMethod:
		return el.Decl.ReturnType
	case ElementType:
		return el.QualifiedOwner
	default:
		return ""
	}
}

// ScopeAt returns every Decl visible at (line, char): the enclosing type's
// members plus the enclosing method's parameters.
func (t *Task) ScopeAt(path string, line, char int) []*javaparse.Decl {
	f, ok := t.files[path]
	if !ok {
		return nil
	}
	d := f.DeclAt(line, char)
	if d == nil {
		return nil
	}

	var scope []*javaparse.Decl
	if d.Kind == javaparse.KindMethod || d.Kind == javaparse.KindConstructor {
		for _, p := range d.Params {
			scope = append(scope, &javaparse.Decl{Kind: javaparse.KindField, Name: p.Name, FieldType: p.Type, Parent: d})
		}
		d = d.Parent
	}
	if d != nil {
		scope = append(scope, d.Children...)
		for _, sup := range t.superChain(f, d) {
			scope = append(scope, sup.Children...)
		}
	}
	return scope
}

func (t *Task) superChain(f *javaparse.File, d *javaparse.Decl) []*javaparse.Decl {
	var chain []*javaparse.Decl
	seen := map[string]bool{}
	cur := d
	for cur != nil && cur.Superclass != "" && !seen[cur.Superclass] {
		seen[cur.Superclass] = true
		entry, ok := t.resolveTypeName(f, cur.Superclass)
		if !ok {
			break
		}
		chain = append(chain, entry.decl)
		cur = entry.decl
	}
	return chain
}

// IsAccessible reports whether member, declared with the given modifiers,
// is visible from a use site in the same package (fromPackage).
func IsAccessible(modifiers []string, declPackage, fromPackage string) bool {
	for _, m := range modifiers {
		switch m {
		case "public":
			return true
		case "private":
			return false
		case "protected":
			return declPackage == fromPackage
		}
	}
	// package-private
	return declPackage == fromPackage
}

// MembersOf returns every member Decl of the named type, including those
// inherited along its (locally resolvable) superclass chain.
func (t *Task) MembersOf(qualifiedTypeNameArg string) []*javaparse.Decl {
	entry, ok := t.types[qualifiedTypeNameArg]
	if !ok {
		return nil
	}
	members := append([]*javaparse.Decl(nil), entry.decl.Children...)
	for _, sup := range t.superChain(entry.file, entry.decl) {
		members = append(members, sup.Children...)
	}
	return members
}

// Erasure returns the erased form of a (possibly generic) type string:
// array/generic suffixes are stripped to their raw type.
func Erasure(typeName string) string {
	typeName = strings.TrimSpace(typeName)
	if idx := strings.Index(typeName, "<"); idx >= 0 {
		typeName = typeName[:idx]
	}
	typeName = strings.TrimRight(typeName, "[] ")
	return strings.TrimSpace(typeName)
}

// FindTypeDeclaration resolves a qualified name to its declaration, first by
// direct lookup in this task's symbol table, then via the slow path of
// scanning package-sibling files for the simple name as a token.
func (t *Task) FindTypeDeclaration(qualifiedName string) (*javaparse.Decl, *javaparse.File, bool) {
	if e, ok := t.types[qualifiedName]; ok {
		return e.decl, e.file, true
	}
	if t.facade == nil {
		return nil, nil, false
	}
	return t.facade.findTypeDeclarationSlow(qualifiedName)
}

// ResolveLocalType resolves name (as written in f, honoring its imports and
// package) to a locally compiled declaration. It exposes resolveTypeName to
// callers outside this package, such as providers generating abstract-method
// stubs against an implemented interface or superclass.
func (t *Task) ResolveLocalType(f *javaparse.File, name string) (*javaparse.Decl, *javaparse.File, bool) {
	entry, ok := t.resolveTypeName(f, name)
	if !ok {
		return nil, nil, false
	}
	return entry.decl, entry.file, true
}

func (t *Task) resolveTypeName(f *javaparse.File, name string) (typeEntry, bool) {
	name = Erasure(name)
	if strings.Contains(name, ".") {
		if e, ok := t.types[name]; ok {
			return e, true
		}
	}
	pkg := f.Package
	if pkg != "" {
		if e, ok := t.types[pkg+"."+name]; ok {
			return e, true
		}
	}
	for _, imp := range f.Imports {
		if imp.Wildcard {
			continue
		}
		if strings.HasSuffix(imp.Path, "."+name) || imp.Path == name {
			if e, ok := t.types[imp.Path]; ok {
				return e, true
			}
		}
	}
	return typeEntry{}, false
}

// lombokMetadataFor computes Lombok Metadata for a type Decl (store is only
// checked for nil; its cache is not consulted), honoring the task's
// AP-disabled flag: when AP is disabled, or store is nil, no synthetic
// members are reported regardless of annotations.
func (t *Task) lombokMetadataFor(store *lombok.Store, qualifiedName string, modTimeKey string, d *javaparse.Decl) *lombok.Metadata {
	if t.apDisabled || store == nil {
		return &lombok.Metadata{ClassName: d.Name}
	}
	return lombok.Compute(d)
}
