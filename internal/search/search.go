// Package search implements byte-level word containment and safe-rename
// checks over file contents. It is deliberately lexical: the compiler
// façade and its candidate-file filters decide what to compile, this
// package only decides whether a textual occurrence is a plausible match.
package search

import (
	"strings"

	"jls/internal/javaident"
)

// ContainsWord reports whether text contains word as a whole identifier.
func ContainsWord(text, word string) bool {
	return javaident.ContainsWord([]byte(text), word)
}

// ContainsAny reports whether text contains any of words as a whole
// identifier, e.g. an accessor-name set (getFoo/isFoo/setFoo alongside the
// field name).
func ContainsAny(text string, words []string) bool {
	for _, w := range words {
		if ContainsWord(text, w) {
			return true
		}
	}
	return false
}

// CountOccurrences returns the number of whole-word occurrences of word in
// text, stopping early once it reaches limit (limit <= 0 means unbounded).
func CountOccurrences(text, word string, limit int) int {
	count := 0
	rest := text
	for {
		idx := strings.Index(rest, word)
		if idx < 0 {
			break
		}
		candidate := rest[idx : idx+len(word)]
		before := idx > 0
		boundaryOK := true
		if before {
			prevRune := rune(rest[idx-1])
			if javaident.IsIdentifierPart(prevRune) {
				boundaryOK = false
			}
		}
		after := idx + len(word)
		if after < len(rest) {
			nextRune := rune(rest[after])
			if javaident.IsIdentifierPart(nextRune) {
				boundaryOK = false
			}
		}
		if boundaryOK && candidate == word {
			count++
			if limit > 0 && count >= limit {
				return count
			}
		}
		rest = rest[idx+1:]
	}
	return count
}

// SafeToRename reports whether replacing every whole-word occurrence of
// oldName with newName in text cannot collide with an existing identifier
// occurrence of newName that isn't itself being renamed. This is a
// conservative textual check; the providers package's rename does not call
// it.
func SafeToRename(text, oldName, newName string) bool {
	if oldName == newName {
		return true
	}
	return !ContainsWord(text, newName)
}
