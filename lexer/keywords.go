package lexer

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// Keywords are matched case-insensitively: the lexer lowercases the candidate
// before lookup. The table is bucketed by length so a miss costs at most a
// handful of byte comparisons and no allocations.

var keywordList = []string{
	"project",
	"table",
	"tablegroup",
	"tablepartial",
	"indexes",
	"index",
	"ref",
	"references",
	"note",
	"notes",
	"enum",
	"primary",
	"key",
	"pk",
	"unique",
	"increment",
	"not",
	"null",
	"default",
	"name",
	"type",
	"color",
	"headercolor",
	"database_type",
	"now",
	"on",
	"update",
	"delete",
	"cascade",
	"restrict",
	"set",
	"no",
	"action",
	"as",
	"true",
	"false",
}

var keywordsByLen [16][]string

func init() {
	for _, w := range keywordList {
		l := len(w)
		if l < len(keywordsByLen) {
			keywordsByLen[l] = append(keywordsByLen[l], w)
		}
	}
}

// lookupKeyword returns the canonical keyword for a lowercase candidate.
// This function performs zero allocations.
func lookupKeyword(val []byte) (string, bool) {
	l := len(val)
	if l == 0 || l >= len(keywordsByLen) {
		return "", false
	}
	for _, w := range keywordsByLen[l] {
		if bytesEqualString(val, w) {
			return w, true
		}
	}
	return "", false
}

// IsKeyword reports whether word is a reserved word, ignoring case.
func IsKeyword(word string) bool {
	_, ok := matchKeyword([]byte(word), nil)
	return ok
}

// Keywords returns the reserved words in lexicographic order.
func Keywords() []string {
	out := make([]string, len(keywordList))
	copy(out, keywordList)
	sort.Strings(out)
	return out
}

// matchKeyword lowercases raw into scratch and looks it up. Non-ASCII words
// go through bytes.ToLower so that, say, the Kelvin sign folds to 'k'.
func matchKeyword(raw, scratch []byte) (string, bool) {
	ascii := true
	for _, c := range raw {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if !ascii {
		return lookupKeyword(bytes.ToLower(raw))
	}
	n := len(raw)
	if n >= len(keywordsByLen) {
		return "", false
	}
	if cap(scratch) < n {
		scratch = make([]byte, n)
	}
	scratch = scratch[:n]
	for i, c := range raw {
		if c >= 'A' && c <= 'Z' {
			scratch[i] = c + 32
		} else {
			scratch[i] = c
		}
	}
	return lookupKeyword(scratch)
}

func lowerWord(raw []byte) string {
	var scratch [16]byte
	if w, ok := matchKeyword(raw, scratch[:0]); ok {
		return w
	}
	return string(bytes.ToLower(raw))
}

func bytesEqualString(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}
