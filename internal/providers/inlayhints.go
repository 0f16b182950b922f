package providers

import (
	sitter "github.com/smacker/go-tree-sitter"

	"jls/internal/compiler"
	"jls/internal/javaparse"
)

// InlayHintKind distinguishes a parameter-name hint from an inferred-type
// (var) hint.
type InlayHintKind int

const (
	HintParameterName InlayHintKind = iota
	HintInferredType
)

// InlayHint is a single label rendered at a position, matching one of the
// kinds a Java source view commonly annotates without touching the file.
type InlayHint struct {
	Kind     InlayHintKind
	Position javaparse.Position
	Label    string
}

// InlayHints emits a parameter-name hint before each argument of a method
// invocation whose declaration resolves locally, and an inferred-type hint
// after each `var` local declarator. Constructor arguments in object
// creation expressions get no parameter-name hints.
func InlayHints(task *compiler.Task, path string) []InlayHint {
	f, ok := task.Files()[path]
	if !ok || f.Tree == nil {
		return nil
	}

	var hints []InlayHint
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "method_invocation":
			hints = append(hints, parameterHints(task, f, n)...)
		case "local_variable_declaration":
			if h, ok := varTypeHint(f, n); ok {
				hints = append(hints, h)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(f.Tree.RootNode())
	return hints
}

func parameterHints(task *compiler.Task, f *javaparse.File, call *sitter.Node) []InlayHint {
	nameNode := call.ChildByFieldName("name")
	argsNode := call.ChildByFieldName("arguments")
	if nameNode == nil || argsNode == nil {
		return nil
	}
	methodName := string(f.Source[nameNode.StartByte():nameNode.EndByte()])

	recvType := ""
	if recv := call.ChildByFieldName("object"); recv != nil {
		recvType = inferReceiverType(task, f, recv)
	} else {
		// unqualified call: owning type of the enclosing method
		p := call.StartPoint()
		if el := task.ElementAt(f.Path, int(p.Row), int(p.Column)); el != nil {
			recvType = el.QualifiedOwner
		}
	}
	if recvType == "" {
		return nil
	}

	var decl *javaparse.Decl
	for _, m := range task.MembersOf(recvType) {
		if m.Kind == javaparse.KindMethod && m.Name == methodName {
			decl = m
			break
		}
	}
	if decl == nil {
		return nil
	}

	var hints []InlayHint
	for i := 0; i < int(argsNode.NamedChildCount()) && i < len(decl.Params); i++ {
		arg := argsNode.NamedChild(i)
		p := arg.StartPoint()
		hints = append(hints, InlayHint{
			Kind:     HintParameterName,
			Position: javaparse.Position{Line: int(p.Row), Char: int(p.Column)},
			Label:    decl.Params[i].Name + ":",
		})
	}
	return hints
}

func inferReceiverType(task *compiler.Task, f *javaparse.File, recv *sitter.Node) string {
	if recv.Type() != "identifier" {
		return ""
	}
	name := string(f.Source[recv.StartByte():recv.EndByte()])
	p := recv.StartPoint()
	for _, d := range task.ScopeAt(f.Path, int(p.Row), int(p.Column)) {
		if d.Name == name {
			return compiler.Erasure(d.FieldType)
		}
	}
	return ""
}

func varTypeHint(f *javaparse.File, decl *sitter.Node) (InlayHint, bool) {
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return InlayHint{}, false
	}
	typeText := string(f.Source[typeNode.StartByte():typeNode.EndByte()])
	if typeText != "var" {
		return InlayHint{}, false
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil {
			continue
		}
		inferred := inferExpressionType(f, valueNode)
		if inferred == "" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		p := nameNode.EndPoint()
		return InlayHint{
			Kind:     HintInferredType,
			Position: javaparse.Position{Line: int(p.Row), Char: int(p.Column)},
			Label:    ": " + inferred,
		}, true
	}
	return InlayHint{}, false
}

// inferExpressionType handles the common, syntactically unambiguous shapes:
// `new Foo(...)`, string/numeric/boolean literals. Anything else is left
// unhinted rather than guessed.
func inferExpressionType(f *javaparse.File, n *sitter.Node) string {
	switch n.Type() {
	case "object_creation_expression":
		if t := n.ChildByFieldName("type"); t != nil {
			return string(f.Source[t.StartByte():t.EndByte()])
		}
	case "string_literal":
		return "String"
	case "decimal_integer_literal", "hex_integer_literal":
		return "int"
	case "decimal_floating_point_literal":
		return "double"
	case "true", "false":
		return "boolean"
	}
	return ""
}
