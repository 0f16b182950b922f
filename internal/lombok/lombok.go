// Package lombok models the synthetic members a Lombok-annotated class
// would receive from the real annotation processor, as an explicit
// tagged-union schema rather than running any annotation processing.
package lombok

import (
	"strings"
	"sync"
	"time"

	"jls/internal/javaparse"
	"jls/internal/logging"
)

// ConstructorKind enumerates the constructor flavors Lombok can generate.
type ConstructorKind int

const (
	ConstructorNone ConstructorKind = iota
	ConstructorNoArgs
	ConstructorRequiredArgs
	ConstructorAllArgs
)

// Metadata describes the synthetic members implied by a class's
// annotations, plus enough of its own declarations to avoid collisions.
type Metadata struct {
	ClassName         string
	Getters           bool
	Setters           bool
	ToString          bool
	EqualsAndHashCode bool
	Constructor       ConstructorKind
	Builder           bool

	// Fields is the ordered, non-static field list used to synthesize
	// accessor signatures and constructor parameter lists.
	Fields []javaparse.Param

	// explicit is the set of method names/signatures the source already
	// declares, so synthetic members never collide with real ones.
	explicit map[string]struct{}

	computedAt time.Time
}

// HasExplicit reports whether the class already declares a method with the
// given simple name (arity is not considered; Lombok itself skips
// generation whenever any method of that name exists).
func (m *Metadata) HasExplicit(methodName string) bool {
	_, ok := m.explicit[methodName]
	return ok
}

// GetterName returns the conventional accessor name for a field, using
// isX for boolean fields and getX otherwise.
func GetterName(field javaparse.Param) string {
	cap := capitalize(field.Name)
	if field.Type == "boolean" {
		return "is" + cap
	}
	return "get" + cap
}

// SetterName returns the conventional mutator name for a field.
func SetterName(field javaparse.Param) string {
	return "set" + capitalize(field.Name)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// lombokAnnotationNames lists every annotation the synthetic-member model
// recognizes.
var lombokAnnotationNames = []string{
	"Data", "Getter", "Setter", "ToString", "EqualsAndHashCode",
	"Builder", "NoArgsConstructor", "RequiredArgsConstructor", "AllArgsConstructor",
}

// HasAnyAnnotation reports whether decl carries any annotation the Lombok
// metadata model recognizes.
func HasAnyAnnotation(decl *javaparse.Decl) bool {
	for _, name := range lombokAnnotationNames {
		if decl.HasAnnotation(name) {
			return true
		}
	}
	return false
}

// Compute builds a Metadata for decl by inspecting its class-level and
// field-level annotations. decl must be a class/record Decl: the real
// annotation processor only ever generates these synthetic members for a
// class or record, so a Lombok annotation on any other declaration kind
// (interface, enum, @interface) is a malformed input that this function
// rejects the same way a real processor round would fail the compilation.
func Compute(decl *javaparse.Decl) *Metadata {
	if HasAnyAnnotation(decl) && decl.Kind != javaparse.KindClass && decl.Kind != javaparse.KindRecord {
		panic("lombok: annotation processing failure: " + decl.Name + " is a " + decl.Kind.String() + ", not a class or record")
	}

	m := &Metadata{
		ClassName: decl.Name,
		explicit:  make(map[string]struct{}),
	}

	if decl.HasAnnotation("Data") {
		m.Getters = true
		m.Setters = true
		m.ToString = true
		m.EqualsAndHashCode = true
		m.Constructor = ConstructorRequiredArgs
	}
	if decl.HasAnnotation("Getter") {
		m.Getters = true
	}
	if decl.HasAnnotation("Setter") {
		m.Setters = true
	}
	if decl.HasAnnotation("ToString") {
		m.ToString = true
	}
	if decl.HasAnnotation("EqualsAndHashCode") {
		m.EqualsAndHashCode = true
	}
	if decl.HasAnnotation("Builder") {
		m.Builder = true
	}
	if decl.HasAnnotation("NoArgsConstructor") {
		m.Constructor = ConstructorNoArgs
	}
	if decl.HasAnnotation("RequiredArgsConstructor") {
		m.Constructor = ConstructorRequiredArgs
	}
	if decl.HasAnnotation("AllArgsConstructor") {
		m.Constructor = ConstructorAllArgs
	}

	for _, child := range decl.Children {
		switch child.Kind {
		case javaparse.KindField:
			if child.HasModifier("static") {
				continue
			}
			m.Fields = append(m.Fields, javaparse.Param{Name: child.Name, Type: child.FieldType})
		case javaparse.KindMethod, javaparse.KindConstructor:
			m.explicit[child.Name] = struct{}{}
		}
	}

	m.computedAt = time.Now()
	return m
}

// Store caches Metadata per qualified class name, invalidated by the
// owning file's on-disk modification time, mirroring the lazy,
// mtime-keyed lifecycle.
type Store struct {
	mu    sync.Mutex
	byKey map[string]*entry
}

type entry struct {
	meta    *Metadata
	modTime time.Time
}

// NewStore creates an empty lombok metadata store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]*entry)}
}

// Get returns the cached Metadata for qualifiedName if its file modTime has
// not advanced since it was computed, else recomputes it from decl and
// caches the new result.
func (s *Store) Get(qualifiedName string, modTime time.Time, decl *javaparse.Decl) *Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byKey[qualifiedName]; ok && !modTime.After(e.modTime) {
		return e.meta
	}

	meta := Compute(decl)
	s.byKey[qualifiedName] = &entry{meta: meta, modTime: modTime}
	logging.Get(logging.CategoryLombok).Debug("lombok: recomputed metadata for %s", qualifiedName)
	return meta
}

// Invalidate drops any cached metadata for qualifiedName.
func (s *Store) Invalidate(qualifiedName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, qualifiedName)
}

// IsLombokAnnotated reports whether src lexically contains the token
// "lombok", the cheap signal the compiler façade uses to decide whether a
// file needs to be added to a compilation's expanded source set.
func IsLombokAnnotated(src []byte) bool {
	return strings.Contains(string(src), "lombok")
}
