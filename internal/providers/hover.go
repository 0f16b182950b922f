package providers

import (
	"fmt"
	"strings"
	"time"

	"jls/internal/compiler"
	"jls/internal/javaparse"
	"jls/internal/lombok"
)

// HoverResult is the markdown content returned for a hover request.
type HoverResult struct {
	Markdown string
	Range    javaparse.Range
}

// Hover builds a typed signature block plus rendered Javadoc for the
// element at (line, char), synthesizing the signature from Lombok metadata
// when the enclosing class implies synthetic members for it.
func Hover(task *compiler.Task, lombokStore *lombok.Store, fileModTime time.Time, path string, line, char int) *HoverResult {
	el := task.ElementAt(path, line, char)
	if el == nil {
		return nil
	}

	var sb strings.Builder
	switch el.Kind {
	case compiler.ElementType:
		renderTypeHover(&sb, el)
		if lombokStore != nil {
			renderLombokSummary(&sb, lombokStore, fileModTime, el)
		}
	case compiler.ElementMethod:
		renderMethodHover(&sb, el)
	case compiler.ElementField:
		renderFieldHover(&sb, el)
	case compiler.ElementEnumConstant:
		fmt.Fprintf(&sb, "```java\n%s\n```", el.Decl.Name)
	default:
		return nil
	}

	if el.Decl.Doc != "" {
		sb.WriteString("\n\n---\n\n")
		sb.WriteString(el.Decl.Doc)
	}

	return &HoverResult{Markdown: sb.String(), Range: el.Decl.NameRange}
}

func renderTypeHover(sb *strings.Builder, el *compiler.Element) {
	d := el.Decl
	fmt.Fprintf(sb, "```java\n%s · %s%s %s", el.File.Package, modifierPrefix(d.Modifiers), d.Kind, d.Name)
	if d.Superclass != "" {
		fmt.Fprintf(sb, " extends %s", d.Superclass)
	}
	if len(d.Interfaces) > 0 {
		fmt.Fprintf(sb, " implements %s", strings.Join(d.Interfaces, ", "))
	}
	sb.WriteString("\n```")
}

func renderMethodHover(sb *strings.Builder, el *compiler.Element) {
	d := el.Decl
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Type + " " + p.Name
	}
	fmt.Fprintf(sb, "```java\n%s %s(%s)\n```", d.ReturnType, d.Name, strings.Join(params, ", "))
}

func renderFieldHover(sb *strings.Builder, el *compiler.Element) {
	fmt.Fprintf(sb, "```java\n%s %s\n```", el.Decl.FieldType, el.Decl.Name)
}

func renderLombokSummary(sb *strings.Builder, lombokStore *lombok.Store, fileModTime time.Time, el *compiler.Element) {
	if !lombok.IsLombokAnnotated(el.File.Source) {
		return
	}
	meta := lombokStore.Get(el.QualifiedOwner, fileModTime, el.Decl)
	var synthetic []string
	if meta.Getters {
		synthetic = append(synthetic, "getters")
	}
	if meta.Setters {
		synthetic = append(synthetic, "setters")
	}
	if meta.ToString {
		synthetic = append(synthetic, "toString")
	}
	if meta.EqualsAndHashCode {
		synthetic = append(synthetic, "equals/hashCode")
	}
	if meta.Constructor != lombok.ConstructorNone {
		synthetic = append(synthetic, "constructor")
	}
	if meta.Builder {
		synthetic = append(synthetic, "builder")
	}
	if len(synthetic) > 0 {
		fmt.Fprintf(sb, "\n\nlombok generates: %s", strings.Join(synthetic, ", "))
	}
}

func modifierPrefix(mods []string) string {
	if len(mods) == 0 {
		return ""
	}
	return strings.Join(mods, " ") + " "
}
