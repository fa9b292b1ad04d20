// Package labels holds the class-id to display-name table used when annotating frames.
package labels

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownClass is returned when a detector reports a class id the table has no entry for
var ErrUnknownClass = errors.New("unknown class id")

// Table is an immutable, ordered mapping from class id to display name.
// It is safe for concurrent reads.
type Table struct {
	names []string
}

// New builds a table from names in class-id order. Names are stored NFC-normalized
// so precomposed glyphs are looked up in fonts first.
func New(names []string) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("label table must have at least one entry")
	}
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("label table entry %d is empty", i)
		}
		out[i] = norm.NFC.String(n)
	}
	return &Table{names: out}, nil
}

// COCO returns the 80-entry bilingual COCO table.
func COCO() *Table {
	t, err := New(cocoNames)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the display name for classID.
func (t *Table) Lookup(classID int) (string, error) {
	if classID < 0 || classID >= len(t.names) {
		return "", fmt.Errorf("%w: %d (table has %d entries)", ErrUnknownClass, classID, len(t.names))
	}
	return t.names[classID], nil
}

// Len returns the number of classes.
func (t *Table) Len() int { return len(t.names) }

// Names returns a copy of all names in class-id order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Runes returns the set of distinct runes used across all names.
func (t *Table) Runes() []rune {
	seen := make(map[rune]struct{})
	var out []rune
	for _, n := range t.names {
		for _, r := range n {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
