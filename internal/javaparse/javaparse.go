// Package javaparse wraps the tree-sitter Java grammar to produce a
// lightweight declaration-level model of a source file: package, imports,
// and a tree of type/method/field declarations with their source ranges.
// It stands in for a native Java AST front end.
package javaparse

import (
	"context"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"jls/internal/logging"
)

// Kind classifies a declaration node.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotationType
	KindMethod
	KindConstructor
	KindField
	KindEnumConstant
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotationType:
		return "@interface"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	case KindEnumConstant:
		return "enum constant"
	default:
		return "unknown"
	}
}

// Position is a zero-based line/column pair, matching LSP convention.
type Position struct {
	Line int
	Char int
}

// Range is a half-open [Start, End) source range.
type Range struct {
	Start Position
	End   Position
}

// Param is a single formal parameter.
type Param struct {
	Name string
	Type string
}

// Annotation is a bare `@Name` or `@Name(args...)` marker on a declaration.
type Annotation struct {
	Name string
	Args string
}

// Decl is one declaration: a type, method, constructor, field, or enum
// constant. Types nest their members in Children.
type Decl struct {
	Kind        Kind
	Name        string
	Modifiers   []string
	Annotations []Annotation
	Superclass  string
	Interfaces  []string
	ReturnType  string
	FieldType   string
	Params      []Param
	Throws      []string
	RecordComps []Param
	NameRange   Range
	BodyRange   Range
	Doc         string
	Parent      *Decl
	Children    []*Decl
}

// QualifiedName returns Outer.Inner style nesting for a member/type decl.
func (d *Decl) QualifiedName() string {
	if d.Parent == nil {
		return d.Name
	}
	return d.Parent.QualifiedName() + "." + d.Name
}

// HasAnnotation reports whether name (without leading @) is present.
func (d *Decl) HasAnnotation(name string) bool {
	for _, a := range d.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

// HasModifier reports whether mod (e.g. "static", "private") is present.
func (d *Decl) HasModifier(mod string) bool {
	for _, m := range d.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// File is the parsed model of one compilation unit.
type File struct {
	Path        string
	Source      []byte
	Package     string
	Imports     []Import
	Types       []*Decl
	Tree        *sitter.Tree
	ParsedAt    time.Time
}

// Import is one import declaration.
type Import struct {
	Path     string
	Static   bool
	Wildcard bool
}

// Parser wraps a tree-sitter parser configured for Java. Not safe for
// concurrent use; callers should hold one per goroutine or guard with a
// mutex, matching the per-language parser pattern used elsewhere.
type Parser struct {
	ts *sitter.Parser
}

// New creates a Parser with the Java grammar loaded.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{ts: p}
}

// Parse produces a File model for the given source, identified by path for
// diagnostics and ref construction.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	start := time.Now()
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		logging.CompilerWarn("javaparse: parse failed for %s: %v", path, err)
		return nil, err
	}

	f := &File{Path: path, Source: src, Tree: tree, ParsedAt: time.Now()}
	root := tree.RootNode()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			f.Package = text(src, child.ChildByFieldName("name"))
		case "import_declaration":
			f.Imports = append(f.Imports, parseImport(src, child))
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			if d := parseTypeDecl(src, child, nil); d != nil {
				f.Types = append(f.Types, d)
			}
		}
	}

	logging.CompilerDebug("javaparse: parsed %s in %v (%d types)", path, time.Since(start), len(f.Types))
	return f, nil
}

// Close releases the underlying tree-sitter tree. Safe to call on a nil File.
func (f *File) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
	}
}

func text(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func posOf(n *sitter.Node) Position {
	p := n.StartPoint()
	return Position{Line: int(p.Row), Char: int(p.Column)}
}

func rangeOf(n *sitter.Node) Range {
	return Range{Start: posOf(n), End: endPos(n)}
}

func endPos(n *sitter.Node) Position {
	p := n.EndPoint()
	return Position{Line: int(p.Row), Char: int(p.Column)}
}

func parseImport(src []byte, n *sitter.Node) Import {
	imp := Import{}
	raw := text(src, n)
	imp.Static = strings.Contains(raw, "static")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			imp.Path = text(src, child)
		case "asterisk":
			imp.Wildcard = true
		}
	}
	if strings.HasSuffix(strings.TrimSpace(raw), "*;") {
		imp.Wildcard = true
	}
	return imp
}

func modifiersOf(src []byte, n *sitter.Node) ([]string, []Annotation) {
	var mods []string
	var annos []Annotation
	mn := n.ChildByFieldName("modifiers")
	if mn == nil {
		return mods, annos
	}
	for i := 0; i < int(mn.NamedChildCount()); i++ {
		c := mn.NamedChild(i)
		switch c.Type() {
		case "marker_annotation", "annotation":
			name := text(src, c.ChildByFieldName("name"))
			args := ""
			if argNode := c.ChildByFieldName("arguments"); argNode != nil {
				args = text(src, argNode)
			}
			annos = append(annos, Annotation{Name: name, Args: args})
		default:
			mods = append(mods, text(src, c))
		}
	}
	return mods, annos
}

func docCommentBefore(src []byte, n *sitter.Node) string {
	prev := n.PrevSibling()
	for prev != nil && prev.Type() != "block_comment" && prev.Type() != "line_comment" {
		prev = prev.PrevSibling()
		if prev != nil && prev.IsNamed() {
			break
		}
	}
	if prev == nil || prev.Type() != "block_comment" {
		return ""
	}
	raw := text(src, prev)
	if !strings.HasPrefix(raw, "/**") {
		return ""
	}
	return cleanJavadoc(raw)
}

func cleanJavadoc(raw string) string {
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")
	lines := strings.Split(raw, "\n")
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func parseTypeDecl(src []byte, n *sitter.Node, parent *Decl) *Decl {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	mods, annos := modifiersOf(src, n)

	kind := KindClass
	switch n.Type() {
	case "interface_declaration":
		kind = KindInterface
	case "enum_declaration":
		kind = KindEnum
	case "record_declaration":
		kind = KindRecord
	case "annotation_type_declaration":
		kind = KindAnnotationType
	}

	d := &Decl{
		Kind:        kind,
		Name:        text(src, nameNode),
		Modifiers:   mods,
		Annotations: annos,
		NameRange:   rangeOf(nameNode),
		BodyRange:   rangeOf(n),
		Doc:         docCommentBefore(src, n),
		Parent:      parent,
	}

	if sc := n.ChildByFieldName("superclass"); sc != nil {
		d.Superclass = strings.TrimPrefix(strings.TrimSpace(text(src, sc)), "extends")
		d.Superclass = strings.TrimSpace(d.Superclass)
	}
	if iface := n.ChildByFieldName("interfaces"); iface != nil {
		raw := text(src, iface)
		raw = strings.TrimPrefix(raw, "implements")
		raw = strings.TrimPrefix(raw, "extends")
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				d.Interfaces = append(d.Interfaces, part)
			}
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil && kind == KindRecord {
		d.RecordComps = parseParams(src, params)
	}

	body := n.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if child := parseMember(src, member, d); child != nil {
				d.Children = append(d.Children, child)
			}
		}
	}
	return d
}

func parseMember(src []byte, n *sitter.Node, parent *Decl) *Decl {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return parseTypeDecl(src, n, parent)
	case "method_declaration":
		return parseMethod(src, n, parent, KindMethod)
	case "constructor_declaration":
		return parseMethod(src, n, parent, KindConstructor)
	case "field_declaration":
		return parseField(src, n, parent)
	case "enum_constant":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		return &Decl{
			Kind:      KindEnumConstant,
			Name:      text(src, nameNode),
			NameRange: rangeOf(nameNode),
			BodyRange: rangeOf(n),
			Doc:       docCommentBefore(src, n),
			Parent:    parent,
		}
	default:
		return nil
	}
}

func parseMethod(src []byte, n *sitter.Node, parent *Decl, kind Kind) *Decl {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	mods, annos := modifiersOf(src, n)
	d := &Decl{
		Kind:        kind,
		Name:        text(src, nameNode),
		Modifiers:   mods,
		Annotations: annos,
		NameRange:   rangeOf(nameNode),
		BodyRange:   rangeOf(n),
		Doc:         docCommentBefore(src, n),
		Parent:      parent,
	}
	if rt := n.ChildByFieldName("type"); rt != nil {
		d.ReturnType = text(src, rt)
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		d.Params = parseParams(src, params)
	}
	if th := n.ChildByFieldName("throws"); th != nil {
		raw := strings.TrimPrefix(text(src, th), "throws")
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				d.Throws = append(d.Throws, part)
			}
		}
	}
	return d
}

func parseParams(src []byte, n *sitter.Node) []Param {
	var out []Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		typeNode := p.ChildByFieldName("type")
		out = append(out, Param{Name: text(src, nameNode), Type: text(src, typeNode)})
	}
	return out
}

func parseField(src []byte, n *sitter.Node, parent *Decl) *Decl {
	mods, annos := modifiersOf(src, n)
	typeNode := n.ChildByFieldName("type")
	fieldType := text(src, typeNode)

	declarator := n.ChildByFieldName("declarator")
	if declarator == nil {
		return nil
	}
	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	return &Decl{
		Kind:        KindField,
		Name:        text(src, nameNode),
		Modifiers:   mods,
		Annotations: annos,
		FieldType:   fieldType,
		NameRange:   rangeOf(nameNode),
		BodyRange:   rangeOf(n),
		Doc:         docCommentBefore(src, n),
		Parent:      parent,
	}
}

// NodeAt finds the smallest named node covering (line, char).
func NodeAt(tree *sitter.Tree, line, char int) *sitter.Node {
	if tree == nil {
		return nil
	}
	point := sitter.Point{Row: uint32(line), Column: uint32(char)}
	return tree.RootNode().NamedDescendantForPointRange(point, point)
}

// AllDecls flattens a file's type tree into a single slice, pre-order.
func (f *File) AllDecls() []*Decl {
	var out []*Decl
	var walk func(d *Decl)
	walk = func(d *Decl) {
		out = append(out, d)
		for _, c := range d.Children {
			walk(c)
		}
	}
	for _, t := range f.Types {
		walk(t)
	}
	return out
}

// DeclAt returns the innermost Decl whose BodyRange contains (line, char).
func (f *File) DeclAt(line, char int) *Decl {
	var best *Decl
	for _, d := range f.AllDecls() {
		if contains(d.BodyRange, line, char) {
			if best == nil || smaller(d.BodyRange, best.BodyRange) {
				best = d
			}
		}
	}
	return best
}

func contains(r Range, line, char int) bool {
	if line < r.Start.Line || line > r.End.Line {
		return false
	}
	if line == r.Start.Line && char < r.Start.Char {
		return false
	}
	if line == r.End.Line && char > r.End.Char {
		return false
	}
	return true
}

func smaller(a, b Range) bool {
	aLines := a.End.Line - a.Start.Line
	bLines := b.End.Line - b.Start.Line
	return aLines < bLines
}

// TextOf slices src by line/char according to r. Decl carries no byte
// offsets, so callers needing source text (diagnostic body scanning,
// code-action edit synthesis) go through this rather than the tree-sitter
// node directly.
func TextOf(src []byte, r Range) string {
	lines := strings.Split(string(src), "\n")
	if r.Start.Line < 0 || r.Start.Line >= len(lines) || r.End.Line < 0 || r.End.Line >= len(lines) {
		return ""
	}
	if r.Start.Line == r.End.Line {
		line := lines[r.Start.Line]
		return line[clampCol(line, r.Start.Char):clampCol(line, r.End.Char)]
	}
	var b strings.Builder
	first := lines[r.Start.Line]
	b.WriteString(first[clampCol(first, r.Start.Char):])
	for i := r.Start.Line + 1; i < r.End.Line; i++ {
		b.WriteString("\n")
		b.WriteString(lines[i])
	}
	last := lines[r.End.Line]
	b.WriteString("\n")
	b.WriteString(last[:clampCol(last, r.End.Char)])
	return b.String()
}

func clampCol(line string, col int) int {
	if col < 0 {
		return 0
	}
	if col > len(line) {
		return len(line)
	}
	return col
}

// PositionAt converts a byte offset into text (whose first character sits
// at base) to a Position, by counting newlines up to offset.
func PositionAt(base Position, text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	line := base.Line
	lastNL := -1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lastNL = i
		}
	}
	char := offset
	if lastNL >= 0 {
		char = offset - lastNL - 1
	} else {
		char += base.Char
	}
	return Position{Line: line, Char: char}
}
