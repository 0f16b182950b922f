package providers

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jls/internal/classpath"
	"jls/internal/compiler"
	"jls/internal/javaparse"
)

// MaxCompletionResults caps every enumeration; beyond this, Incomplete is
// set so the editor knows to re-query with a narrower prefix.
const MaxCompletionResults = 50

// CompletionItemKind mirrors the handful of LSP completion kinds these
// providers distinguish between.
type CompletionItemKind int

const (
	CompletionField CompletionItemKind = iota
	CompletionMethod
	CompletionClass
	CompletionKeyword
	CompletionEnumMember
)

// CompletionData is the serializable payload attached to a completion item
// so resolveCompletionItem can fetch documentation without recompiling.
type CompletionData struct {
	ClassName            string
	MemberName           string
	ErasedParameterTypes []string
	OverloadCount        int
}

// CompletionItem is one candidate returned by Complete.
type CompletionItem struct {
	Label      string
	Kind       CompletionItemKind
	Detail     string
	Data       *CompletionData
	ImportEdit string // non-empty when selecting this item should add an import
}

// CompletionResult is the full response for one completion request.
type CompletionResult struct {
	Items      []CompletionItem
	Incomplete bool
}

var javaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while", "var", "record", "yield",
	"sealed", "permits",
}

// Complete dispatches by the cursor's leaf token kind: identifier, member
// access, switch subject, import path, or a bare keyword list.
func Complete(task *compiler.Task, cp *classpath.Set, path string, line, char int) CompletionResult {
	f, ok := task.Files()[path]
	if !ok {
		return CompletionResult{}
	}
	node := javaparse.NodeAt(f.Tree, line, char)
	if node == nil {
		return keywordsOnly()
	}

	switch node.Type() {
	case "identifier":
		return completeIdentifier(task, cp, f, line, char, nodeText(f, node))
	case "field_access", "method_invocation":
		return completeMemberSelect(task, f, line, char)
	case "switch_label", "switch_block_statement_group":
		return completeSwitch(task, f, line, char)
	default:
		if insideImport(node) {
			return completeImport(cp, nodeText(f, node))
		}
		return keywordsOnly()
	}
}

func nodeText(f *javaparse.File, n *sitter.Node) string {
	return string(f.Source[n.StartByte():n.EndByte()])
}

func insideImport(n *sitter.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == "import_declaration" {
			return true
		}
	}
	return false
}

func completeIdentifier(task *compiler.Task, cp *classpath.Set, f *javaparse.File, line, char int, prefix string) CompletionResult {
	var items []CompletionItem
	incomplete := false

	for _, d := range task.ScopeAt(f.Path, line, char) {
		if !strings.HasPrefix(d.Name, prefix) {
			continue
		}
		items = append(items, scopeItem(d))
		if len(items) >= MaxCompletionResults {
			incomplete = true
			break
		}
	}

	if !incomplete && prefix != "" && isUpper(prefix) && cp != nil {
		for _, qn := range cp.SimpleNamePrefix(prefix) {
			items = append(items, CompletionItem{
				Label:      simpleNameOf(qn),
				Kind:       CompletionClass,
				Detail:     qn,
				ImportEdit: qn,
			})
			if len(items) >= MaxCompletionResults {
				incomplete = true
				break
			}
		}
	}

	items = append(items, keywordItems(prefix)...)
	return CompletionResult{Items: cap50(items), Incomplete: incomplete}
}

func scopeItem(d *javaparse.Decl) CompletionItem {
	switch d.Kind {
	case javaparse.KindMethod:
		return CompletionItem{
			Label:  d.Name,
			Kind:   CompletionMethod,
			Detail: d.ReturnType + " " + d.Name + "(...)",
			Data:   &CompletionData{MemberName: d.Name, ErasedParameterTypes: erasedParams(d.Params)},
		}
	case javaparse.KindEnumConstant:
		return CompletionItem{Label: d.Name, Kind: CompletionEnumMember}
	default:
		return CompletionItem{Label: d.Name, Kind: CompletionField, Detail: d.FieldType}
	}
}

func erasedParams(params []javaparse.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = compiler.Erasure(p.Type)
	}
	return out
}

// completeMemberSelect resolves the receiver's declared type and lists its
// accessible members, collapsing overloads into a single "+N overloads"
// item.
func completeMemberSelect(task *compiler.Task, f *javaparse.File, line, char int) CompletionResult {
	d := f.DeclAt(line, char)
	if d == nil {
		return CompletionResult{}
	}
	ownerType := ""
	if d.Kind == javaparse.KindMethod || d.Kind == javaparse.KindConstructor {
		ownerType = qualifiedTypeNameOf(f, d.Parent)
	} else {
		ownerType = qualifiedTypeNameOf(f, d)
	}

	members := task.MembersOf(ownerType)
	byName := make(map[string][]*javaparse.Decl)
	var order []string
	for _, m := range members {
		if m.Kind != javaparse.KindMethod && m.Kind != javaparse.KindField {
			continue
		}
		if _, ok := byName[m.Name]; !ok {
			order = append(order, m.Name)
		}
		byName[m.Name] = append(byName[m.Name], m)
	}

	var items []CompletionItem
	for _, name := range order {
		group := byName[name]
		first := group[0]
		item := scopeItem(first)
		if len(group) > 1 && first.Kind == javaparse.KindMethod {
			item.Detail = item.Detail + " +" + itoa(len(group)-1) + " overloads"
			item.Data.OverloadCount = len(group)
		}
		items = append(items, item)
		if len(items) >= MaxCompletionResults {
			return CompletionResult{Items: items, Incomplete: true}
		}
	}
	return CompletionResult{Items: items}
}

func completeSwitch(task *compiler.Task, f *javaparse.File, line, char int) CompletionResult {
	d := f.DeclAt(line, char)
	if d == nil || d.Parent == nil {
		return CompletionResult{}
	}
	var items []CompletionItem
	for _, m := range task.MembersOf(qualifiedTypeNameOf(f, d.Parent)) {
		if m.Kind == javaparse.KindEnumConstant {
			items = append(items, CompletionItem{Label: m.Name, Kind: CompletionEnumMember})
		}
	}
	return CompletionResult{Items: items}
}

func completeImport(cp *classpath.Set, partial string) CompletionResult {
	if cp == nil {
		return CompletionResult{}
	}
	var items []CompletionItem
	incomplete := false
	for _, qn := range cp.WithPrefix(partial) {
		items = append(items, CompletionItem{Label: qn, Kind: CompletionClass})
		if len(items) >= MaxCompletionResults {
			incomplete = true
			break
		}
	}
	return CompletionResult{Items: items, Incomplete: incomplete}
}

func keywordsOnly() CompletionResult {
	return CompletionResult{Items: keywordItems("")}
}

func keywordItems(prefix string) []CompletionItem {
	var items []CompletionItem
	for _, kw := range javaKeywords {
		if prefix == "" || strings.HasPrefix(kw, prefix) {
			items = append(items, CompletionItem{Label: kw, Kind: CompletionKeyword})
		}
	}
	return items
}

func cap50(items []CompletionItem) []CompletionItem {
	if len(items) > MaxCompletionResults {
		return items[:MaxCompletionResults]
	}
	return items
}

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func qualifiedTypeNameOf(f *javaparse.File, d *javaparse.Decl) string {
	if d == nil {
		return f.Package
	}
	if f.Package == "" {
		return d.QualifiedName()
	}
	return f.Package + "." + d.QualifiedName()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ResolveCompletionItem re-parses the source file declaring data.ClassName
// and extracts its doc comment, filling in documentation without repeating
// the original completion compile.
func ResolveCompletionItem(task *compiler.Task, data *CompletionData) string {
	if data == nil {
		return ""
	}
	decl, _, ok := task.FindTypeDeclaration(data.ClassName)
	if !ok {
		return ""
	}
	if data.MemberName == "" {
		return decl.Doc
	}
	for _, m := range decl.Children {
		if m.Name == data.MemberName {
			return m.Doc
		}
	}
	return ""
}
