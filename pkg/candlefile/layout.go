package candlefile

import (
	"fmt"
	"strings"
)

// Layout selects which columns hold the open, high, low and close prices.
type Layout string

const (
	// LayoutAuto resolves the price columns from header names and falls back
	// to the header width when the names are not recognised.
	LayoutAuto Layout = "auto"
	// LayoutNarrow is time,open,high,low,close[,volume...].
	LayoutNarrow Layout = "narrow"
	// LayoutWide is date,time,open,high,low,close[,tickvol,vol,spread].
	LayoutWide Layout = "wide"
)

const wideHeaderWidth = 8

var priceNames = [4]string{"open", "high", "low", "close"}

// ParseLayout accepts auto, narrow or wide; empty means auto.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LayoutAuto, nil
	case LayoutAuto, LayoutNarrow, LayoutWide:
		return l, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want auto, narrow or wide)", s)
	}
}

// PriceColumns returns the 0-based indexes of the open, high, low and close
// columns for the given header.
func (l Layout) PriceColumns(header []string) [4]int {
	switch l {
	case LayoutNarrow:
		return [4]int{1, 2, 3, 4}
	case LayoutWide:
		return [4]int{2, 3, 4, 5}
	}

	if cols, ok := namedPriceColumns(header); ok {
		return cols
	}
	if len(header) >= wideHeaderWidth {
		return [4]int{2, 3, 4, 5}
	}
	return [4]int{1, 2, 3, 4}
}

func namedPriceColumns(header []string) ([4]int, bool) {
	var cols [4]int
	for i, name := range priceNames {
		idx := -1
		for j, h := range header {
			if normalizeHeader(h) == name {
				idx = j
				break
			}
		}
		if idx < 1 {
			return cols, false
		}
		cols[i] = idx
	}
	return cols, true
}

// normalizeHeader maps "<OPEN>", "Open " and "open" to "open".
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.TrimSuffix(strings.TrimPrefix(h, "<"), ">")
}
