// Package params holds named fit parameters. A Store keeps entries in
// insertion order; each entry carries a numeric value, an optional text value
// for string-valued settings such as limb_dark, a fixed/free flag and an
// optional prior. Updating a value never touches the other fields.
package params

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound     = errors.New("parameter not found")
	ErrInvalidEntry = errors.New("invalid parameter entry")
)

// Prior describes the prior distribution of a free parameter. It is carried
// verbatim for the sampler; nothing in this module evaluates it.
type Prior struct {
	Kind string  `yaml:"kind"` // U, LU or N.
	A    float64 `yaml:"a"`
	B    float64 `yaml:"b"`
}

type Param struct {
	Value float64
	Text  string
	Fixed bool
	Prior *Prior
}

func (p Param) String() string {
	state := "free"
	if p.Fixed {
		state = "fixed"
	}
	if p.Text != "" {
		return fmt.Sprintf("%q (%s)", p.Text, state)
	}
	return fmt.Sprintf("%g (%s)", p.Value, state)
}

type Store struct {
	names   []string
	entries map[string]*Param
}

func New() *Store {
	return &Store{
		names:   make([]string, 0, 16),
		entries: make(map[string]*Param),
	}
}

// Of builds a store of free parameters from parallel name and value slices.
func Of(names []string, values []float64) *Store {
	s := New()
	for i, name := range names {
		s.Add(name, Param{Value: values[i]})
	}
	return s
}

// Add inserts a parameter, or replaces the content of an existing one in
// place so that stores sharing the entry observe the change.
func (s *Store) Add(name string, p Param) {
	if cur, ok := s.entries[name]; ok {
		*cur = p
		return
	}
	entry := p
	s.names = append(s.names, name)
	s.entries[name] = &entry
}

func (s *Store) Get(name string) (*Param, bool) {
	p, ok := s.entries[name]
	return p, ok
}

func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

func (s *Store) Value(name string) (float64, error) {
	p, ok := s.entries[name]
	if !ok {
		return 0, errors.Wrap(ErrNotFound, name)
	}
	return p.Value, nil
}

func (s *Store) Text(name string) (string, error) {
	p, ok := s.entries[name]
	if !ok {
		return "", errors.Wrap(ErrNotFound, name)
	}
	return p.Text, nil
}

// SetValue overwrites the numeric value of name and reports whether the
// parameter exists. Flags, text and prior are preserved.
func (s *Store) SetValue(name string, value float64) bool {
	p, ok := s.entries[name]
	if !ok {
		return false
	}
	p.Value = value
	return true
}

func (s *Store) Len() int {
	return len(s.names)
}

func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// FreeNames lists the names of the parameters that are not fixed.
func (s *Store) FreeNames() []string {
	out := make([]string, 0, len(s.names))
	for _, name := range s.names {
		if !s.entries[name].Fixed {
			out = append(out, name)
		}
	}
	return out
}

// Each calls fn on every entry in insertion order.
func (s *Store) Each(fn func(name string, p *Param)) {
	for _, name := range s.names {
		fn(name, s.entries[name])
	}
}

// Merge returns the union of s and other. Entries are shared, not copied, so
// an update through any of the three stores is visible in the others. When
// both stores hold a name, the entry of s wins.
func (s *Store) Merge(other *Store) *Store {
	out := New()
	for _, src := range []*Store{s, other} {
		if src == nil {
			continue
		}
		for _, name := range src.names {
			if _, ok := out.entries[name]; ok {
				continue
			}
			out.names = append(out.names, name)
			out.entries[name] = src.entries[name]
		}
	}
	return out
}

// Clone returns a deep copy that shares nothing with s.
func (s *Store) Clone() *Store {
	out := New()
	for _, name := range s.names {
		p := *s.entries[name]
		if p.Prior != nil {
			prior := *p.Prior
			p.Prior = &prior
		}
		out.Add(name, p)
	}
	return out
}

// LongParamList returns, per channel, the store names that feed each title.
// Channel 0 uses the titles themselves; channel c > 0 uses "title_c" when the
// store defines it and falls back to the shared title otherwise.
func LongParamList(s *Store, titles []string, nchan int) [][]string {
	if nchan < 1 {
		nchan = 1
	}
	out := make([][]string, nchan)
	for c := 0; c < nchan; c++ {
		row := make([]string, len(titles))
		for i, title := range titles {
			row[i] = title
			if c > 0 {
				if name := fmt.Sprintf("%s_%d", title, c); s.Has(name) {
					row[i] = name
				}
			}
		}
		out[c] = row
	}
	return out
}
