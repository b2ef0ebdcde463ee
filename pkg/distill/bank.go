package distill

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a term definition held outside the graph.
type Definition struct {
	Term   string `yaml:"term" json:"term"`
	Text   string `yaml:"text" json:"text"`
	Source string `yaml:"source,omitempty" json:"source,omitempty"`
}

// Bank is a case-insensitive term lookup. A nil *Bank is empty.
type Bank struct {
	defs map[string]Definition
}

type bankFile struct {
	Definitions []Definition `yaml:"definitions"`
}

// NewBank builds a bank from term -> text pairs.
func NewBank(terms map[string]string) *Bank {
	b := &Bank{defs: make(map[string]Definition, len(terms))}
	for term, text := range terms {
		b.Add(Definition{Term: term, Text: text})
	}
	return b
}

// LoadBank parses a YAML (or JSON) bank of the form {definitions: [{term, text, source}]}.
func LoadBank(r io.Reader) (*Bank, error) {
	var f bankFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode definition bank: %w", err)
	}
	b := &Bank{defs: make(map[string]Definition, len(f.Definitions))}
	for _, d := range f.Definitions {
		b.Add(d)
	}
	return b, nil
}

// LoadBankFile reads a bank from path.
func LoadBankFile(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definition bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// Add inserts or replaces a definition. Definitions without a term are ignored.
func (b *Bank) Add(d Definition) {
	key := normalizeTerm(d.Term)
	if key == "" {
		return
	}
	if b.defs == nil {
		b.defs = make(map[string]Definition)
	}
	b.defs[key] = d
}

// Merge copies every definition of other into b, overwriting on conflict.
func (b *Bank) Merge(other *Bank) {
	if other == nil {
		return
	}
	for _, d := range other.defs {
		b.Add(d)
	}
}

// Lookup finds term ignoring case and surrounding whitespace.
func (b *Bank) Lookup(term string) (Definition, bool) {
	if b == nil {
		return Definition{}, false
	}
	d, ok := b.defs[normalizeTerm(term)]
	return d, ok
}

// Len returns the number of definitions.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.defs)
}

// Terms returns the defined terms sorted alphabetically.
func (b *Bank) Terms() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.defs))
	for _, d := range b.defs {
		out = append(out, d.Term)
	}
	sort.Strings(out)
	return out
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
