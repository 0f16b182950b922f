package providers

import (
	"fmt"
	"strings"

	"jls/internal/compiler"
	"jls/internal/javaparse"
	"jls/internal/lombok"
)

// CodeActionKind distinguishes the two channels code actions are offered
// through.
type CodeActionKind int

const (
	ActionConvertUnusedLocalToStatement CodeActionKind = iota
	ActionRemoveUnusedDeclaration
	ActionRemoveUnusedThrows
	ActionAddSuppressWarnings
	ActionAddThrows
	ActionAddMissingImport
	ActionGenerateConstructor
	ActionGenerateAbstractStubs
	ActionGenerateMethodFromInvocation
	ActionOverrideInheritedMethod
	ActionGenerateToString
	ActionGenerateEqualsHashCode
	ActionGenerateGettersSetters
)

// deferredKinds are the actions whose edits are computed lazily, on
// codeAction/resolve, instead of eagerly when the action is offered.
var deferredKinds = map[CodeActionKind]bool{
	ActionGenerateConstructor:          true,
	ActionGenerateAbstractStubs:        true,
	ActionGenerateMethodFromInvocation: true,
	ActionOverrideInheritedMethod:      true,
	ActionGenerateToString:             true,
	ActionGenerateEqualsHashCode:       true,
	ActionGenerateGettersSetters:       true,
	ActionAddThrows:                    true,
}

// IsDeferred reports whether kind's edit must be computed via ResolveCodeAction
// rather than being attached up front.
func IsDeferred(kind CodeActionKind) bool {
	return deferredKinds[kind]
}

// CodeAction is one offered rewrite. Range anchors the action back onto the
// element ResolveCodeAction needs (the owning type's name, or the affected
// method's name); Payload carries whatever extra identifiers the deferred
// resolve step needs (field/method/exception simple names).
type CodeAction struct {
	Title   string
	Kind    CodeActionKind
	Range   javaparse.Range
	Payload map[string]string
}

// CodeActionData is the opaque payload round-tripped through a client's
// codeAction/resolve request: everything ResolveCodeAction needs to recompute
// the edit without the client having to understand it.
type CodeActionData struct {
	Path    string
	Kind    CodeActionKind
	Range   javaparse.Range
	Payload map[string]string
}

// TextEdit is one replacement within a single file, the provider-level
// analogue of the wire WorkspaceEdit entry.
type TextEdit struct {
	Range   javaparse.Range
	NewText string
}

// diagnosticActionMap maps a diagnostic code to the rewrite it offers.
var diagnosticActionMap = map[string]CodeActionKind{
	compiler.CodeUnusedImport:          ActionAddMissingImport,
	compiler.CodeUnusedLocal:           ActionConvertUnusedLocalToStatement,
	compiler.CodeUnusedClass:           ActionRemoveUnusedDeclaration,
	compiler.CodeUnusedMethod:          ActionRemoveUnusedDeclaration,
	compiler.CodeUnusedField:           ActionRemoveUnusedDeclaration,
	compiler.CodeUnusedThrows:          ActionRemoveUnusedThrows,
	compiler.CodeCannotResolveLocation: ActionAddMissingImport,
	compiler.CodeMissingConstructor:    ActionGenerateConstructor,
	compiler.CodeMissingAbstractStubs:  ActionGenerateAbstractStubs,
	compiler.CodeUnhandledException:    ActionAddThrows,
	compiler.CodeMissingMethod:         ActionGenerateMethodFromInvocation,
}

// structuralCodes are diagnostics whose only reasonable quick fix is a real
// rewrite; offering a "Suppress warning" fallback for them (as for lint
// warnings) would hide a compile error behind an annotation that can't fix it.
var structuralCodes = map[string]bool{
	compiler.CodeCannotResolveLocation: true,
	compiler.CodeMissingConstructor:    true,
	compiler.CodeMissingAbstractStubs:  true,
	compiler.CodeUnhandledException:    true,
	compiler.CodeMissingMethod:         true,
}

// DiagnosticActions maps each recognized diagnostic to its code action(s).
// An unused-import/lint diagnostic also offers a suppress-warnings fallback.
func DiagnosticActions(diags []compiler.Diagnostic) []CodeAction {
	var actions []CodeAction
	for _, d := range diags {
		kind, ok := diagnosticActionMap[d.Code]
		if !ok {
			continue
		}
		payload := map[string]string{"code": d.Code, "message": d.Message}
		switch d.Code {
		case compiler.CodeMissingAbstractStubs:
			payload["missing"] = d.SimpleName
		case compiler.CodeUnhandledException, compiler.CodeMissingMethod:
			payload["simpleName"] = d.SimpleName
		}
		actions = append(actions, CodeAction{
			Title:   titleFor(kind, d),
			Kind:    kind,
			Range:   d.Range,
			Payload: payload,
		})
		if !structuralCodes[d.Code] {
			actions = append(actions, CodeAction{
				Title:   "Suppress warning",
				Kind:    ActionAddSuppressWarnings,
				Range:   d.Range,
				Payload: map[string]string{"code": d.Code},
			})
		}
	}
	return actions
}

func titleFor(kind CodeActionKind, d compiler.Diagnostic) string {
	switch kind {
	case ActionAddMissingImport:
		return "Add missing import"
	case ActionRemoveUnusedDeclaration:
		return "Remove unused declaration"
	case ActionRemoveUnusedThrows:
		return "Remove redundant throws"
	case ActionConvertUnusedLocalToStatement:
		return "Convert to expression statement"
	case ActionGenerateConstructor:
		return "Generate constructor"
	case ActionGenerateAbstractStubs:
		return "Implement abstract methods"
	case ActionAddThrows:
		return "Add throws " + d.SimpleName
	case ActionGenerateMethodFromInvocation:
		return "Create method '" + d.SimpleName + "'"
	default:
		return d.Message
	}
}

// CursorActions offers class-body generation actions when the cursor sits
// on a blank line inside a class body but not inside a method, plus one
// "override inherited method" action per inheritable non-final member.
func CursorActions(task *compiler.Task, path string, line, char int) []CodeAction {
	f, ok := task.Files()[path]
	if !ok {
		return nil
	}
	d := f.DeclAt(line, char)
	if d == nil || d.Kind == javaparse.KindMethod || d.Kind == javaparse.KindConstructor {
		return nil
	}

	owner := qualifiedTypeNameOf(f, d)
	actions := []CodeAction{
		{Title: "Generate constructor", Kind: ActionGenerateConstructor, Range: d.NameRange, Payload: map[string]string{"owner": owner}},
		{Title: "Generate toString()", Kind: ActionGenerateToString, Range: d.NameRange, Payload: map[string]string{"owner": owner}},
		{Title: "Generate equals() and hashCode()", Kind: ActionGenerateEqualsHashCode, Range: d.NameRange, Payload: map[string]string{"owner": owner}},
		{Title: "Generate getters and setters", Kind: ActionGenerateGettersSetters, Range: d.NameRange, Payload: map[string]string{"owner": owner}},
	}

	for _, m := range task.MembersOf(owner) {
		if m.Kind != javaparse.KindMethod || m.HasModifier("final") || m.HasModifier("static") || m.HasModifier("private") {
			continue
		}
		actions = append(actions, CodeAction{
			Title:   "Override " + m.Name + "(...)",
			Kind:    ActionOverrideInheritedMethod,
			Range:   d.NameRange,
			Payload: map[string]string{"owner": owner, "method": m.Name},
		})
	}
	return actions
}

// ResolveCodeAction computes the actual workspace edit for a deferred code
// action, re-locating its anchor element in a freshly compiled task the same
// way completion/codeLens resolve steps do.
func ResolveCodeAction(task *compiler.Task, data CodeActionData) (map[string][]TextEdit, error) {
	pf, ok := task.Files()[data.Path]
	if !ok {
		return nil, fmt.Errorf("codeAction/resolve: file not compiled: %s", data.Path)
	}

	switch data.Kind {
	case ActionAddThrows:
		m := pf.DeclAt(data.Range.Start.Line, data.Range.Start.Char)
		if m == nil || (m.Kind != javaparse.KindMethod && m.Kind != javaparse.KindConstructor) {
			return nil, fmt.Errorf("codeAction/resolve: no method at anchor")
		}
		return addThrowsEdit(pf, m, data.Payload["simpleName"])
	case ActionGenerateMethodFromInvocation:
		m := pf.DeclAt(data.Range.Start.Line, data.Range.Start.Char)
		if m == nil {
			return nil, fmt.Errorf("codeAction/resolve: no enclosing method at anchor")
		}
		owner := m.Parent
		if owner == nil {
			return nil, fmt.Errorf("codeAction/resolve: caller has no owning type")
		}
		return generateMethodStub(pf, owner, data.Payload["simpleName"]), nil
	}

	owner := pf.DeclAt(data.Range.Start.Line, data.Range.Start.Char)
	if owner == nil {
		return nil, fmt.Errorf("codeAction/resolve: no declaration at anchor")
	}
	qualifiedOwner := data.Payload["owner"]
	if qualifiedOwner == "" {
		qualifiedOwner = qualifiedTypeNameOf(pf, owner)
	}

	switch data.Kind {
	case ActionGenerateConstructor:
		return generateConstructor(pf, owner), nil
	case ActionGenerateToString:
		return generateToString(pf, owner), nil
	case ActionGenerateEqualsHashCode:
		return generateEqualsHashCode(pf, owner), nil
	case ActionGenerateGettersSetters:
		return generateGettersSetters(pf, owner), nil
	case ActionOverrideInheritedMethod:
		return generateOverrideStub(task, pf, owner, qualifiedOwner, data.Payload["method"])
	case ActionGenerateAbstractStubs:
		return generateAbstractStubs(task, pf, owner, qualifiedOwner, data.Payload["missing"]), nil
	default:
		return nil, fmt.Errorf("codeAction/resolve: unsupported kind")
	}
}

// insertionPoint is the zero-width range just before a type's closing brace,
// where generated members are inserted.
func insertionPoint(owner *javaparse.Decl) javaparse.Range {
	p := javaparse.Position{Line: owner.BodyRange.End.Line, Char: 0}
	return javaparse.Range{Start: p, End: p}
}

func fieldsOf(owner *javaparse.Decl) []javaparse.Param {
	var out []javaparse.Param
	for _, c := range owner.Children {
		if c.Kind == javaparse.KindField && !c.HasModifier("static") {
			out = append(out, javaparse.Param{Name: c.Name, Type: c.FieldType})
		}
	}
	return out
}

func single(path string, r javaparse.Range, text string) map[string][]TextEdit {
	return map[string][]TextEdit{path: {{Range: r, NewText: text}}}
}

func generateConstructor(pf *javaparse.File, owner *javaparse.Decl) map[string][]TextEdit {
	fields := fieldsOf(owner)
	params := make([]string, len(fields))
	var body strings.Builder
	for i, f := range fields {
		params[i] = f.Type + " " + f.Name
		body.WriteString("        this." + f.Name + " = " + f.Name + ";\n")
	}
	text := fmt.Sprintf("    public %s(%s) {\n%s    }\n\n", owner.Name, strings.Join(params, ", "), body.String())
	return single(pf.Path, insertionPoint(owner), text)
}

func generateToString(pf *javaparse.File, owner *javaparse.Decl) map[string][]TextEdit {
	fields := fieldsOf(owner)
	parts := make([]string, len(fields))
	for i, f := range fields {
		sep := ", "
		if i == 0 {
			sep = ""
		}
		parts[i] = fmt.Sprintf("%q + %s", sep+f.Name+"=", f.Name)
	}
	text := fmt.Sprintf("    @Override\n    public String toString() {\n        return \"%s{\" + %s + \"}\";\n    }\n\n",
		owner.Name, strings.Join(parts, " + "))
	return single(pf.Path, insertionPoint(owner), text)
}

func generateEqualsHashCode(pf *javaparse.File, owner *javaparse.Decl) map[string][]TextEdit {
	fields := fieldsOf(owner)
	var eqChecks strings.Builder
	var hashArgs []string
	for _, f := range fields {
		eqChecks.WriteString(fmt.Sprintf("            && java.util.Objects.equals(%s, other.%s)\n", f.Name, f.Name))
		hashArgs = append(hashArgs, f.Name)
	}
	text := fmt.Sprintf(`    @Override
    public boolean equals(Object o) {
        if (this == o) return true;
        if (!(o instanceof %s)) return false;
        %s other = (%s) o;
        return true
%s;
    }

    @Override
    public int hashCode() {
        return java.util.Objects.hash(%s);
    }

`, owner.Name, owner.Name, owner.Name, eqChecks.String(), strings.Join(hashArgs, ", "))
	return single(pf.Path, insertionPoint(owner), text)
}

func generateGettersSetters(pf *javaparse.File, owner *javaparse.Decl) map[string][]TextEdit {
	var b strings.Builder
	for _, f := range fieldsOf(owner) {
		b.WriteString(fmt.Sprintf("    public %s %s() {\n        return %s;\n    }\n\n", f.Type, lombok.GetterName(f), f.Name))
		b.WriteString(fmt.Sprintf("    public void %s(%s %s) {\n        this.%s = %s;\n    }\n\n", lombok.SetterName(f), f.Type, f.Name, f.Name, f.Name))
	}
	return single(pf.Path, insertionPoint(owner), b.String())
}

// generateOverrideStub builds a @Override stub for methodName, copying its
// signature from the locally resolvable member of owner's supertype chain.
func generateOverrideStub(task *compiler.Task, pf *javaparse.File, owner *javaparse.Decl, qualifiedOwner, methodName string) (map[string][]TextEdit, error) {
	src := findMember(task, qualifiedOwner, methodName)
	if src == nil {
		return nil, fmt.Errorf("codeAction/resolve: %s not found on %s's supertypes", methodName, qualifiedOwner)
	}
	text := stubFor(src, false)
	return single(pf.Path, insertionPoint(owner), text), nil
}

// generateAbstractStubs builds one stub per comma-joined missing method name,
// resolved against owner's implemented interfaces/superclass.
func generateAbstractStubs(task *compiler.Task, pf *javaparse.File, owner *javaparse.Decl, qualifiedOwner, missing string) map[string][]TextEdit {
	var b strings.Builder
	for _, name := range strings.Split(missing, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src := findInterfaceMember(task, pf, owner, name)
		if src == nil {
			continue
		}
		b.WriteString(stubFor(src, true))
	}
	return single(pf.Path, insertionPoint(owner), b.String())
}

func findMember(task *compiler.Task, qualifiedOwner, name string) *javaparse.Decl {
	for _, m := range task.MembersOf(qualifiedOwner) {
		if m.Kind == javaparse.KindMethod && m.Name == name {
			return m
		}
	}
	return nil
}

// findInterfaceMember resolves name against owner's declared interfaces and
// superclass, since Task.MembersOf only follows the superclass chain.
func findInterfaceMember(task *compiler.Task, pf *javaparse.File, owner *javaparse.Decl, name string) *javaparse.Decl {
	refs := append([]string{}, owner.Interfaces...)
	if owner.Superclass != "" {
		refs = append(refs, owner.Superclass)
	}
	for _, ref := range refs {
		decl, _, ok := task.ResolveLocalType(pf, ref)
		if !ok {
			continue
		}
		for _, m := range decl.Children {
			if m.Kind == javaparse.KindMethod && m.Name == name {
				return m
			}
		}
	}
	return nil
}

func stubFor(src *javaparse.Decl, throwUnsupported bool) string {
	params := make([]string, len(src.Params))
	for i, p := range src.Params {
		params[i] = p.Type + " " + p.Name
	}
	returnType := src.ReturnType
	if returnType == "" {
		returnType = "void"
	}
	ret := "        throw new UnsupportedOperationException();\n"
	if throwUnsupported {
		ret = fmt.Sprintf("        throw new UnsupportedOperationException(%q);\n", src.Name)
	}
	return fmt.Sprintf("    @Override\n    public %s %s(%s) {\n%s    }\n\n", returnType, src.Name, strings.Join(params, ", "), ret)
}

// generateMethodStub builds a private stub for an undeclared self-invoked
// method, inserted into the calling method's owning class.
func generateMethodStub(pf *javaparse.File, owner *javaparse.Decl, name string) map[string][]TextEdit {
	text := fmt.Sprintf("    private void %s() {\n        throw new UnsupportedOperationException();\n    }\n\n", name)
	return single(pf.Path, insertionPoint(owner), text)
}

// addThrowsEdit inserts excName into m's throws clause, or adds one if none
// exists, by locating the method's opening brace lexically.
func addThrowsEdit(pf *javaparse.File, m *javaparse.Decl, excName string) (map[string][]TextEdit, error) {
	if excName == "" {
		return nil, fmt.Errorf("codeAction/resolve: missing exception name")
	}
	sig := javaparse.TextOf(pf.Source, javaparse.Range{Start: m.NameRange.Start, End: m.BodyRange.End})
	brace := strings.IndexByte(sig, '{')
	if brace < 0 {
		return nil, fmt.Errorf("codeAction/resolve: method body not found")
	}
	if len(m.Throws) == 0 {
		pos := javaparse.PositionAt(m.NameRange.Start, sig, brace)
		return single(pf.Path, javaparse.Range{Start: pos, End: pos}, "throws "+excName+" "), nil
	}
	idx := strings.Index(sig, "throws")
	if idx < 0 || idx > brace {
		pos := javaparse.PositionAt(m.NameRange.Start, sig, brace)
		return single(pf.Path, javaparse.Range{Start: pos, End: pos}, "throws "+excName+" "), nil
	}
	pos := javaparse.PositionAt(m.NameRange.Start, sig, idx+len("throws"))
	return single(pf.Path, javaparse.Range{Start: pos, End: pos}, " "+excName+","), nil
}
