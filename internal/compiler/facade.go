// Package compiler implements the reusable compiler façade: one long-lived
// context leased by exactly one Compile Task at a time, with automatic
// retry on resolvable-location faults and on annotation-processing faults.
package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jls/internal/classpath"
	"jls/internal/filestore"
	"jls/internal/index"
	"jls/internal/javaident"
	"jls/internal/javaparse"
	"jls/internal/lombok"
	"jls/internal/logging"
)

// CompilationFailure is the typed fault surfaced to callers when a compile
// cannot produce a task at all (as opposed to producing diagnostics).
type CompilationFailure struct {
	Phase string
	Err   error
}

func (f *CompilationFailure) Error() string {
	return fmt.Sprintf("compile failed during %s: %v", f.Phase, f.Err)
}

func (f *CompilationFailure) Unwrap() error { return f.Err }

// Settings carries the classpath/add-exports lease configuration. A change
// to any field invalidates the current lease on the next compile.
type Settings struct {
	ClassPath   []string
	AddExports  []string
	LombokAware bool
}

func (s Settings) equal(o Settings) bool {
	return stringsEqual(s.ClassPath, o.ClassPath) &&
		stringsEqual(s.AddExports, o.AddExports) &&
		s.LombokAware == o.LombokAware
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Facade owns the single long-lived compiler context. Only one Task may be
// unclosed at a time; Compile enforces that by closing any prior lease
// before starting a new one.
type Facade struct {
	mu sync.Mutex

	store       *filestore.Store
	index       *index.Index
	classpath   *classpath.Set
	lombokStore *lombok.Store
	parser      *javaparse.Parser

	settings  Settings
	current   *Task
	leaseKeys map[string]time.Time // path -> modTime at time of last lease
}

// NewFacade creates a façade bound to the given workspace components.
func NewFacade(store *filestore.Store, idx *index.Index, cp *classpath.Set, lombokStore *lombok.Store) *Facade {
	return &Facade{
		store:       store,
		index:       idx,
		classpath:   cp,
		lombokStore: lombokStore,
		parser:      javaparse.New(),
	}
}

// UpdateSettings replaces the lease configuration; the next Compile call
// will discard any cached task if the settings actually changed.
func (f *Facade) UpdateSettings(s Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settings.equal(s) {
		if f.current != nil {
			f.current.Close()
			f.current = nil
		}
		f.settings = s
	}
}

// Compile implements the façade's leasing contract: dedup sources, reuse a
// cached task when the source set and modification times are unchanged,
// otherwise parse fresh, run the cannot-resolve-location single retry, and
// (if needed) the annotation-processing-fault retry with AP disabled.
func (f *Facade) Compile(ctx context.Context, sources []string) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deduped := dedupPaths(sources)

	if f.settings.LombokAware {
		deduped = f.expandWithLombokSources(deduped)
	}

	snapshot, err := f.snapshotModTimes(deduped)
	if err != nil {
		return nil, &CompilationFailure{Phase: "snapshot", Err: err}
	}

	if f.current != nil && !f.current.closed && f.sameLease(deduped, snapshot) {
		logging.CompilerDebug("compiler: reusing cached task for %d sources", len(deduped))
		return f.current, nil
	}

	if f.current != nil {
		f.current.Close()
		f.current = nil
	}

	task, err := f.compileOnce(ctx, deduped, false)
	if err != nil {
		return nil, err
	}

	if extra, ok := f.retryCandidate(task); ok {
		logging.CompilerDebug("compiler: retrying with extra source %s for cannot-resolve-location", extra)
		retrySources := append(append([]string(nil), deduped...), extra)
		retrySources = dedupPaths(retrySources)
		retried, err := f.compileOnce(ctx, retrySources, false)
		if err == nil {
			task = retried
			deduped = retrySources
		}
	}

	f.current = task
	f.leaseKeys = snapshot
	return task, nil
}

// compileOnce parses and analyzes exactly the given sources, with a
// recover-based AP-fault classification: if analysis panics while AP
// (Lombok synthetic-member support) is enabled, it is retried once with AP
// disabled, matching the documented AP-fault taxonomy.
func (f *Facade) compileOnce(ctx context.Context, sources []string, apDisabled bool) (task *Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			if !apDisabled && isAPFault(r) {
				logging.CompilerWarn("compiler: AP fault classified (%v), retrying with AP disabled", r)
				task, err = f.compileOnce(ctx, sources, true)
				return
			}
			err = &CompilationFailure{Phase: "analyze", Err: fmt.Errorf("%v", r)}
		}
	}()

	t := &Task{
		facade:     f,
		files:      make(map[string]*javaparse.File),
		types:      make(map[string]typeEntry),
		apDisabled: apDisabled,
	}

	for _, path := range sources {
		if strings.HasSuffix(path, "module-info.java") {
			continue // tracked but hidden from compilation batches
		}
		content, rErr := f.store.Contents(path)
		if rErr != nil {
			continue
		}
		pf, pErr := f.parser.Parse(ctx, path, []byte(content))
		if pErr != nil {
			t.diagnostics = append(t.diagnostics, Diagnostic{
				URI:      path,
				Severity: SeverityError,
				Message:  fmt.Sprintf("parse error: %v", pErr),
			})
			continue
		}
		t.files[path] = pf
		t.order = append(t.order, path)
		for _, decl := range pf.Types {
			qn := qualifiedTypeName(pf, decl)
			t.types[qn] = typeEntry{decl: decl, file: pf}
			registerNestedTypes(t, pf, decl)
		}

		// Lombok metadata computation stands in for real annotation
		// processing (see internal/lombok). Running it here, only on the
		// AP-enabled attempt, is what makes a malformed-annotation panic
		// (lombok.Compute) reachable through the AP-fault retry above
		// instead of only through the lazily-invoked provider path.
		if f.settings.LombokAware && !apDisabled {
			if mt, mErr := f.store.Modified(path); mErr == nil {
				for _, decl := range pf.Types {
					f.computeLombokForDecl(pf, decl, mt)
				}
			}
		}
	}

	t.diagnostics = append(t.diagnostics, f.analyzeResolution(t)...)
	return t, nil
}

// computeLombokForDecl recursively computes (and caches) Lombok metadata
// for decl and its nested types whenever decl itself carries a Lombok
// annotation, so a malformed annotation on any nesting level surfaces
// during this attempt rather than only when a provider later asks for it.
func (f *Facade) computeLombokForDecl(pf *javaparse.File, d *javaparse.Decl, modTime time.Time) {
	if lombok.HasAnyAnnotation(d) {
		f.lombokStore.Get(qualifiedTypeName(pf, d), modTime, d)
	}
	for _, c := range d.Children {
		switch c.Kind {
		case javaparse.KindClass, javaparse.KindInterface, javaparse.KindEnum, javaparse.KindRecord, javaparse.KindAnnotationType:
			f.computeLombokForDecl(pf, c, modTime)
		}
	}
}

func registerNestedTypes(t *Task, f *javaparse.File, d *javaparse.Decl) {
	for _, c := range d.Children {
		switch c.Kind {
		case javaparse.KindClass, javaparse.KindInterface, javaparse.KindEnum, javaparse.KindRecord, javaparse.KindAnnotationType:
			qn := qualifiedTypeName(f, c)
			t.types[qn] = typeEntry{decl: c, file: f}
			registerNestedTypes(t, f, c)
		}
	}
}

// isAPFault applies the documented taxonomy: a recovered value is an AP
// fault if its message mentions annotation processing or looks like an
// internal assertion/nil-pointer fault.
func isAPFault(r interface{}) bool {
	msg := fmt.Sprintf("%v", r)
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "annotation processing") ||
		strings.Contains(lower, "nil pointer") ||
		strings.Contains(lower, "assertion")
}

// analyzeResolution emits cannot-resolve-location diagnostics for
// superclass/interface references that resolve to neither a locally
// compiled type nor a known classpath/JDK class, plus the structural
// diagnostics (missing constructor, missing abstract-method stubs,
// unhandled checked exceptions, calls to undeclared methods) that drive
// the remaining diagnostic-driven code actions.
func (f *Facade) analyzeResolution(t *Task) []Diagnostic {
	var diags []Diagnostic
	for _, path := range t.order {
		pf := t.files[path]
		for _, decl := range pf.Types {
			diags = append(diags, f.checkTypeRefs(t, pf, decl)...)
			diags = append(diags, f.checkStructural(t, pf, decl)...)
		}
	}
	return diags
}

// checkStructural walks a type and its nested types, looking for a concrete
// class missing a constructor its superclass requires or abstract methods
// it must stub, and scanning every method/constructor body for unhandled
// checked exceptions and calls to undeclared methods. This is a simplified,
// non-type-checking approximation consistent with the rest of the façade's
// semantic model: it resolves only locally-compiled supertypes and scans
// method bodies lexically rather than via real call-site type resolution.
func (f *Facade) checkStructural(t *Task, pf *javaparse.File, d *javaparse.Decl) []Diagnostic {
	var diags []Diagnostic
	if d.Kind == javaparse.KindClass {
		diags = append(diags, f.checkAbstractStubs(t, pf, d)...)
		diags = append(diags, f.checkMissingConstructor(t, pf, d)...)
	}
	for _, m := range d.Children {
		switch m.Kind {
		case javaparse.KindMethod, javaparse.KindConstructor:
			diags = append(diags, f.checkMethodBody(t, pf, d, m)...)
		case javaparse.KindClass, javaparse.KindInterface, javaparse.KindEnum, javaparse.KindRecord:
			diags = append(diags, f.checkStructural(t, pf, m)...)
		}
	}
	return diags
}

// checkAbstractStubs reports a class that implements or extends a locally
// resolvable interface/abstract class without declaring one of its
// non-default, non-static methods.
func (f *Facade) checkAbstractStubs(t *Task, pf *javaparse.File, d *javaparse.Decl) []Diagnostic {
	if d.HasModifier("abstract") {
		return nil
	}
	declared := make(map[string]bool, len(d.Children))
	for _, c := range d.Children {
		if c.Kind == javaparse.KindMethod {
			declared[c.Name] = true
		}
	}

	refs := append([]string{}, d.Interfaces...)
	if d.Superclass != "" {
		refs = append(refs, d.Superclass)
	}

	var missing []string
	seen := map[string]bool{}
	for _, ref := range refs {
		entry, ok := t.resolveTypeName(pf, ref)
		if !ok {
			continue
		}
		if entry.decl.Kind != javaparse.KindInterface && !entry.decl.HasModifier("abstract") {
			continue
		}
		for _, m := range entry.decl.Children {
			if m.Kind != javaparse.KindMethod || m.HasModifier("default") || m.HasModifier("static") {
				continue
			}
			if declared[m.Name] || seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			missing = append(missing, m.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []Diagnostic{{
		URI:        pf.Path,
		Range:      d.NameRange,
		Severity:   SeverityError,
		Message:    fmt.Sprintf("%s is not abstract and does not implement %s", d.Name, strings.Join(missing, ", ")),
		Code:       CodeMissingAbstractStubs,
		SimpleName: strings.Join(missing, ","),
	}}
}

// checkMissingConstructor reports a class with no declared constructor
// whose locally resolvable superclass declares only parameterized
// constructors, so the implicit no-arg super() call would fail.
func (f *Facade) checkMissingConstructor(t *Task, pf *javaparse.File, d *javaparse.Decl) []Diagnostic {
	if d.Superclass == "" || d.HasModifier("abstract") {
		return nil
	}
	for _, c := range d.Children {
		if c.Kind == javaparse.KindConstructor {
			return nil
		}
	}
	entry, ok := t.resolveTypeName(pf, d.Superclass)
	if !ok {
		return nil
	}
	var ctors []*javaparse.Decl
	for _, c := range entry.decl.Children {
		if c.Kind == javaparse.KindConstructor {
			ctors = append(ctors, c)
		}
	}
	if len(ctors) == 0 {
		return nil
	}
	for _, c := range ctors {
		if len(c.Params) == 0 {
			return nil
		}
	}
	return []Diagnostic{{
		URI:      pf.Path,
		Range:    d.NameRange,
		Severity: SeverityError,
		Message:  fmt.Sprintf("there is no default constructor available in %s", d.Superclass),
		Code:     CodeMissingConstructor,
	}}
}

// checkMethodBody lexically scans one method/constructor body for checked
// exceptions thrown without being declared or caught, and for self-invoked
// calls (`this.name(...)`) to a name not declared on the class or its
// locally resolvable superclass chain.
func (f *Facade) checkMethodBody(t *Task, pf *javaparse.File, owner *javaparse.Decl, m *javaparse.Decl) []Diagnostic {
	body := javaparse.TextOf(pf.Source, m.BodyRange)
	if body == "" {
		return nil
	}

	var diags []Diagnostic
	for _, exc := range checkedExceptionsThrown(body) {
		if containsString(m.Throws, exc) || strings.Contains(body, "catch") {
			continue
		}
		diags = append(diags, Diagnostic{
			URI:        pf.Path,
			Range:      m.NameRange,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("unreported exception %s; must be caught or declared to be thrown", exc),
			Code:       CodeUnhandledException,
			SimpleName: exc,
		})
	}

	declared := map[string]bool{}
	for _, mm := range owner.Children {
		if mm.Kind == javaparse.KindMethod {
			declared[mm.Name] = true
		}
	}
	for _, sup := range t.superChain(pf, owner) {
		for _, mm := range sup.Children {
			if mm.Kind == javaparse.KindMethod {
				declared[mm.Name] = true
			}
		}
	}
	for _, name := range selfInvokedMethodNames(body) {
		if declared[name] || objectMethods[name] {
			continue
		}
		diags = append(diags, Diagnostic{
			URI:        pf.Path,
			Range:      m.NameRange,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("cannot find symbol: method %s()", name),
			Code:       CodeMissingMethod,
			SimpleName: name,
		})
	}
	return diags
}

var uncheckedExceptions = map[string]bool{
	"RuntimeException": true, "IllegalArgumentException": true, "IllegalStateException": true,
	"NullPointerException": true, "UnsupportedOperationException": true, "IndexOutOfBoundsException": true,
	"ArrayIndexOutOfBoundsException": true, "ArithmeticException": true, "ClassCastException": true,
	"NumberFormatException": true, "ConcurrentModificationException": true, "NoSuchElementException": true,
	"Error": true, "AssertionError": true,
}

var objectMethods = map[string]bool{
	"toString": true, "equals": true, "hashCode": true, "getClass": true,
	"clone": true, "finalize": true, "notify": true, "notifyAll": true, "wait": true,
}

// checkedExceptionsThrown scans body for `throw new XxxException(` sites
// and returns the distinct checked (non-RuntimeException-rooted) exception
// simple names found.
func checkedExceptionsThrown(body string) []string {
	var out []string
	const marker = "throw new "
	for idx := 0; ; {
		i := strings.Index(body[idx:], marker)
		if i < 0 {
			break
		}
		start := idx + i + len(marker)
		end := start
		for end < len(body) && isIdentByte(body[end]) {
			end++
		}
		name := body[start:end]
		idx = end
		if name == "" {
			continue
		}
		if strings.HasSuffix(name, "Exception") && !uncheckedExceptions[name] {
			out = appendUnique(out, name)
		}
	}
	return out
}

// selfInvokedMethodNames scans body for `this.name(` call sites.
func selfInvokedMethodNames(body string) []string {
	var out []string
	const marker = "this."
	for idx := 0; ; {
		i := strings.Index(body[idx:], marker)
		if i < 0 {
			break
		}
		start := idx + i + len(marker)
		end := start
		for end < len(body) && isIdentByte(body[end]) {
			end++
		}
		name := body[start:end]
		idx = end
		if name == "" {
			continue
		}
		j := end
		for j < len(body) && (body[j] == ' ' || body[j] == '\t') {
			j++
		}
		if j < len(body) && body[j] == '(' {
			out = appendUnique(out, name)
		}
	}
	return out
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func appendUnique(out []string, s string) []string {
	for _, o := range out {
		if o == s {
			return out
		}
	}
	return append(out, s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (f *Facade) checkTypeRefs(t *Task, pf *javaparse.File, d *javaparse.Decl) []Diagnostic {
	var diags []Diagnostic
	refs := []string{}
	if d.Superclass != "" {
		refs = append(refs, d.Superclass)
	}
	refs = append(refs, d.Interfaces...)

	for _, ref := range refs {
		name := Erasure(ref)
		if name == "" || isKnownJavaLangOrPrimitive(name) {
			continue
		}
		if _, ok := t.resolveTypeName(pf, name); ok {
			continue
		}
		if f.classpath != nil && len(f.classpath.MatchingSimpleName(name)) > 0 {
			continue
		}
		diags = append(diags, Diagnostic{
			URI:        pf.Path,
			Range:      d.NameRange,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("cannot find symbol: class %s", name),
			Code:       CodeCannotResolveLocation,
			SimpleName: name,
		})
	}

	for _, child := range d.Children {
		if child.Kind == javaparse.KindClass || child.Kind == javaparse.KindInterface ||
			child.Kind == javaparse.KindEnum || child.Kind == javaparse.KindRecord {
			diags = append(diags, f.checkTypeRefs(t, pf, child)...)
		}
	}
	return diags
}

func isKnownJavaLangOrPrimitive(name string) bool {
	switch name {
	case "Object", "String", "Exception", "RuntimeException", "Throwable", "Error",
		"Enum", "Record", "Comparable", "Serializable", "Iterable", "int", "long",
		"double", "float", "boolean", "char", "byte", "short", "void":
		return true
	}
	return false
}

// retryCandidate looks for a cannot-resolve-location diagnostic whose
// simple name matches a package-sibling file not already part of the
// compile, implementing the single-retry rule.
func (f *Facade) retryCandidate(t *Task) (string, bool) {
	for _, d := range t.diagnostics {
		if d.Code != CodeCannotResolveLocation || d.SimpleName == "" {
			continue
		}
		pf, ok := t.files[d.URI]
		if !ok {
			continue
		}
		for _, candidate := range f.store.List(pf.Package) {
			if _, already := t.files[candidate]; already {
				continue
			}
			content, err := f.store.Contents(candidate)
			if err != nil {
				continue
			}
			if javaident.ContainsWord([]byte(content), d.SimpleName) {
				return candidate, true
			}
		}
	}
	return "", false
}

// expandWithLombokSources appends every workspace file containing the
// lexical token "lombok" that isn't already in the set, so synthetic
// members become visible to later analysis.
func (f *Facade) expandWithLombokSources(sources []string) []string {
	present := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		present[s] = struct{}{}
	}
	for _, candidate := range f.index.FilesContaining("lombok") {
		if _, ok := present[candidate]; !ok {
			sources = append(sources, candidate)
			present[candidate] = struct{}{}
		}
	}
	return sources
}

func (f *Facade) snapshotModTimes(sources []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(sources))
	for _, path := range sources {
		mt, err := f.store.Modified(path)
		if err != nil {
			continue
		}
		out[path] = mt
	}
	return out, nil
}

func (f *Facade) sameLease(sources []string, snapshot map[string]time.Time) bool {
	if f.current == nil || len(f.leaseKeys) != len(snapshot) {
		return false
	}
	for _, s := range sources {
		if _, ok := f.current.files[s]; !ok {
			return false
		}
		prev, ok := f.leaseKeys[s]
		if !ok || !prev.Equal(snapshot[s]) {
			return false
		}
	}
	return true
}

func dedupPaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// findTypeDeclarationSlow scans package-sibling files for a file containing
// the qualified name's simple name as a lexical token, the fallback path
// used when the type isn't already part of a compiled task.
func (f *Facade) findTypeDeclarationSlow(qualifiedName string) (*javaparse.Decl, *javaparse.File, bool) {
	simple := qualifiedName
	pkg := ""
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		pkg = qualifiedName[:idx]
		simple = qualifiedName[idx+1:]
	}
	for _, candidate := range f.store.List(pkg) {
		content, err := f.store.Contents(candidate)
		if err != nil || !javaident.ContainsWord([]byte(content), simple) {
			continue
		}
		pf, err := f.parser.Parse(context.Background(), candidate, []byte(content))
		if err != nil {
			continue
		}
		for _, d := range pf.Types {
			if d.Name == simple {
				return d, pf, true
			}
		}
		pf.Close()
	}
	return nil, nil, false
}

// FindAnywhere resolves qualifiedName by trying the workspace source path
// first, then the known classpath/JDK class universe (which carries no
// parseable source, so it is reported as found-but-sourceless).
func (f *Facade) FindAnywhere(qualifiedName string) (decl *javaparse.Decl, file *javaparse.File, fromClasspath bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, pf, ok := f.findTypeDeclarationSlow(qualifiedName); ok {
		return d, pf, false
	}
	if f.classpath != nil {
		for _, qn := range f.classpath.All() {
			if qn == qualifiedName {
				return nil, nil, true
			}
		}
	}
	return nil, nil, false
}

// FindTypeReferences returns the candidate file set likely to reference
// qualifiedName: filtered by the Index on the simple-name token, then kept
// only if the file's imports resolve to the same name or its package
// matches.
func (f *Facade) FindTypeReferences(qualifiedName string) []string {
	simple := qualifiedName
	pkg := ""
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		pkg = qualifiedName[:idx]
		simple = qualifiedName[idx+1:]
	}

	var out []string
	for _, candidate := range f.index.FilesContaining(simple) {
		content, err := f.store.Contents(candidate)
		if err != nil {
			continue
		}
		candPkg, _ := f.store.PackageName(candidate)
		if candPkg == pkg {
			out = append(out, candidate)
			continue
		}
		if referencesImport(content, qualifiedName) {
			out = append(out, candidate)
		}
	}
	return out
}

func referencesImport(content, qualifiedName string) bool {
	simple := qualifiedName
	pkg := qualifiedName
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		simple = qualifiedName[idx+1:]
		pkg = qualifiedName[:idx]
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "import ") {
			continue
		}
		imp := strings.TrimSuffix(strings.TrimPrefix(line, "import "), ";")
		imp = strings.TrimSpace(imp)
		if imp == qualifiedName {
			return true
		}
		if imp == pkg+".*" {
			return true
		}
		_ = simple
	}
	return false
}

// FindMemberReferences returns candidate files by a purely token-based
// filter on memberName; the references provider completes accuracy via
// real compilation.
func (f *Facade) FindMemberReferences(className, memberName string) []string {
	return f.index.FilesContaining(memberName)
}

