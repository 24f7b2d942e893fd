package timeframe

// Code is a canonical timeframe token such as "M1" or "H4".
type Code string

const (
	M1  Code = "M1"
	M2  Code = "M2"
	M3  Code = "M3"
	M4  Code = "M4"
	M5  Code = "M5"
	M10 Code = "M10"
	M15 Code = "M15"
	M30 Code = "M30"
	H1  Code = "H1"
	H2  Code = "H2"
	H3  Code = "H3"
	H4  Code = "H4"
	D1  Code = "D1"
	W1  Code = "W1"
	MN1 Code = "MN1"
)

// Meta holds the display label and position of a canonical code.
type Meta struct {
	Label string
	Rank  int
}

// ordered is the declaration order; ranks are derived from it.
var ordered = []Code{M1, M2, M3, M4, M5, M10, M15, M30, H1, H2, H3, H4, D1, W1, MN1}

var labels = map[Code]string{
	M1:  "1 min",
	M2:  "2 min",
	M3:  "3 min",
	M4:  "4 min",
	M5:  "5 min",
	M10: "10 min",
	M15: "15 min",
	M30: "30 min",
	H1:  "1 hour",
	H2:  "2 hours",
	H3:  "3 hours",
	H4:  "4 hours",
	D1:  "1 day",
	W1:  "1 week",
	MN1: "1 month",
}

// validCodes maps every canonical code to its metadata.
var validCodes = func() map[Code]Meta {
	m := make(map[Code]Meta, len(ordered))
	for i, c := range ordered {
		m[c] = Meta{Label: labels[c], Rank: i}
	}
	return m
}()

// IsValid checks if the code belongs to the canonical set.
func (c Code) IsValid() bool {
	_, ok := validCodes[c]
	return ok
}

// String returns the raw token.
func (c Code) String() string { return string(c) }

// Codes returns the canonical set in declaration order.
func Codes() []Code {
	out := make([]Code, len(ordered))
	copy(out, ordered)
	return out
}
