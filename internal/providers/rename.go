package providers

import (
	"fmt"

	"jls/internal/compiler"
	"jls/internal/javaparse"
)

// RenameEdit is one (file, range) replacement in a rename's workspace edit.
type RenameEdit struct {
	URI   string
	Range javaparse.Range
}

// PrepareRename refuses any element kind the rename provider does not
// support, returning the renameable range when it does.
func PrepareRename(task *compiler.Task, path string, line, char int) (*javaparse.Range, error) {
	el := task.ElementAt(path, line, char)
	if el == nil {
		return nil, fmt.Errorf("rename: no element at %s:%d:%d", path, line, char)
	}
	switch el.Kind {
	case compiler.ElementMethod, compiler.ElementField, compiler.ElementParameter, compiler.ElementLocal:
		return &el.Decl.NameRange, nil
	default:
		return nil, fmt.Errorf("rename: unsupported element kind for %s", el.Decl.Name)
	}
}

// Rename computes the full set of edits for renaming the element at
// (line, char) to newName: for methods and fields, every identifier in the
// candidate files whose text equals the name (or, for a field, one of its
// accessor names); for locals, every matching identifier within the
// declaring compilation unit. Matching is by name only: parameter types are
// not compared, so every overload with that name is renamed too.
func Rename(task *compiler.Task, facade *compiler.Facade, path string, line, char int, newName string) (map[string][]RenameEdit, error) {
	el := task.ElementAt(path, line, char)
	if el == nil {
		return nil, fmt.Errorf("rename: no element at %s:%d:%d", path, line, char)
	}

	switch el.Kind {
	case compiler.ElementMethod, compiler.ElementField:
		target := BuildReferenceTarget(task, path, line, char)
		locs := FindReferences(task, facade, target)
		return groupByURI(locs), nil
	case compiler.ElementParameter, compiler.ElementLocal:
		f := el.File
		locs := scanForNames(f, []string{el.Decl.Name})
		return groupByURI(locs), nil
	default:
		return nil, fmt.Errorf("rename: unsupported element kind")
	}
}

func groupByURI(locs []Location) map[string][]RenameEdit {
	out := make(map[string][]RenameEdit)
	for _, l := range locs {
		out[l.URI] = append(out[l.URI], RenameEdit{URI: l.URI, Range: l.Range})
	}
	return out
}
