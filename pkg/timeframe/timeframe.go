// Package timeframe canonicalizes raw timeframe tokens (file stems, API echoes)
// and defines the total order used to present a symbol's timeframes.
package timeframe

import (
	"sort"
	"strings"
)

// Canonicalize upper-cases a raw token and returns its code and display label.
// Unknown tokens are returned verbatim as both code and label.
func Canonicalize(raw string) (Code, string) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	code := Code(token)
	if meta, ok := validCodes[code]; ok {
		return code, meta.Label
	}
	return code, token
}

// Label returns the display label of a code, or the code itself when unknown.
func Label(c Code) string {
	if meta, ok := validCodes[c]; ok {
		return meta.Label
	}
	return string(c)
}

// Rank returns the position of c in the canonical order.
// Unknown codes share the rank len(Codes()), after every known code.
func Rank(c Code) int {
	if meta, ok := validCodes[c]; ok {
		return meta.Rank
	}
	return len(ordered)
}

// SortFunc stably orders items by the rank of the code extracted from each.
// Items whose codes share a rank (unknowns) keep their relative order.
func SortFunc[T any](items []T, code func(T) Code) {
	sort.SliceStable(items, func(i, j int) bool {
		return Rank(code(items[i])) < Rank(code(items[j]))
	})
}

// Sort stably orders codes in place.
func Sort(codes []Code) {
	SortFunc(codes, func(c Code) Code { return c })
}
