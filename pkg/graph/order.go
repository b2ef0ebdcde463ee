package graph

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var romanValues = map[rune]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// structuredLabel matches labels such as "VIII:3-2-3" or "II:4.1".
var structuredLabel = regexp.MustCompile(`^([IVXLCDM]+):(\d+(?:[.\-]\d+)*)$`)

// Collators keep scratch buffers and are not safe for concurrent use.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und)
)

// RomanToInt parses a subtractive Roman numeral. Malformed input yields 0.
func RomanToInt(roman string) int {
	roman = strings.ToUpper(strings.TrimSpace(roman))
	if roman == "" {
		return 0
	}

	total, prev := 0, 0
	runes := []rune(roman)
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := romanValues[runes[i]]
		if !ok {
			return 0
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// KeyPart is one component of a label sort key.
type KeyPart struct {
	Num   int
	Str   string
	IsNum bool
}

func num(n int) KeyPart    { return KeyPart{Num: n, IsNum: true} }
func str(s string) KeyPart { return KeyPart{Str: s} }

func (p KeyPart) String() string {
	if p.IsNum {
		return strconv.Itoa(p.Num)
	}
	return p.Str
}

// SortKey is a mixed numeric/string key compared by CompareLex.
type SortKey []KeyPart

// LabelSortKey turns "<roman>:<n1>-<n2>..." into [roman, n1, n2, ...].
// Any other label becomes a single string component.
func LabelSortKey(label string) SortKey {
	m := structuredLabel.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return SortKey{str(label)}
	}

	key := SortKey{num(RomanToInt(m[1]))}
	for _, part := range strings.FieldsFunc(m[2], func(r rune) bool { return r == '.' || r == '-' }) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return SortKey{str(label)}
		}
		key = append(key, num(n))
	}
	return key
}

// CompareLex compares two keys component by component. Numbers compare
// numerically and sort before strings; strings use locale collation.
// When one key is a prefix of the other, the shorter key sorts first.
func CompareLex(a, b SortKey) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := comparePart(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func comparePart(a, b KeyPart) int {
	switch {
	case a.IsNum && b.IsNum:
		return cmp.Compare(a.Num, b.Num)
	case a.IsNum:
		return -1
	case b.IsNum:
		return 1
	default:
		return localeCompare(a.Str, b.Str)
	}
}

func localeCompare(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// CompareFirstOccurrence orders nodes by their first appearance in the
// source document: position, then structured label, then id.
func CompareFirstOccurrence(a, b *Node) int {
	pa, pb := a.Position, b.Position
	switch {
	case pa != nil && pb != nil:
		if c := cmp.Compare(pa.LineStart, pb.LineStart); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.ColStart, pb.ColStart); c != 0 {
			return c
		}
	case pa != nil:
		return -1
	case pb != nil:
		return 1
	}

	switch {
	case a.Label != "" && b.Label != "":
		if c := CompareLex(LabelSortKey(a.Label), LabelSortKey(b.Label)); c != 0 {
			return c
		}
	case a.Label != "":
		return -1
	case b.Label != "":
		return 1
	}

	return strings.Compare(a.ID, b.ID)
}

// SortReadingOrder sorts nodes in place and assigns dense 1-based OrderIndex values.
func SortReadingOrder(nodes []*Node) {
	slices.SortStableFunc(nodes, CompareFirstOccurrence)
	for i, n := range nodes {
		n.OrderIndex = i + 1
	}
}
