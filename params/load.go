package params

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// entry is the mapping form of a parameter in a YAML parameter file.
type entry struct {
	Value *float64 `yaml:"value"`
	Text  string   `yaml:"text"`
	Fixed bool     `yaml:"fixed"`
	Prior *Prior   `yaml:"prior"`
}

// LoadFile reads a YAML parameter file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open parameter file %s", path)
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load parameter file %s", path)
	}
	return s, nil
}

// Load parses a YAML document whose top-level keys are parameter names. A
// value is one of
//
//	rp: 0.1                                  # free numeric parameter
//	limb_dark: quadratic                     # text parameter, fixed
//	per: [3.5, fixed]                        # value and state
//	inc: [89.0, free, 80, 90, U]             # value, state, prior a, b, kind
//	t0: {value: 0.0, fixed: false, prior: {kind: N, a: 0, b: 0.01}}
//
// Key order is preserved.
func Load(r io.Reader) (*Store, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, errors.Wrap(err, "unable to decode yaml")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.Wrap(ErrInvalidEntry, "parameter file must be a mapping")
	}
	s := New()
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		p, err := decodeParam(root.Content[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s (line %d)", name, root.Content[i].Line)
		}
		s.Add(name, p)
	}
	return s, nil
}

func decodeParam(node *yaml.Node) (Param, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if v, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return Param{Value: v}, nil
		}
		return Param{Text: node.Value, Fixed: true}, nil
	case yaml.SequenceNode:
		return decodeSequence(node.Content)
	case yaml.MappingNode:
		var e entry
		if err := node.Decode(&e); err != nil {
			return Param{}, errors.Wrap(err, "unable to decode mapping")
		}
		p := Param{Text: e.Text, Fixed: e.Fixed, Prior: e.Prior}
		if e.Value != nil {
			p.Value = *e.Value
		}
		return p, nil
	default:
		return Param{}, errors.Wrapf(ErrInvalidEntry, "unexpected yaml node kind %v", node.Kind)
	}
}

func decodeSequence(items []*yaml.Node) (Param, error) {
	if len(items) == 0 {
		return Param{}, errors.Wrap(ErrInvalidEntry, "empty sequence")
	}
	p, err := decodeParam(items[0])
	if err != nil {
		return Param{}, err
	}
	if len(items) > 1 {
		switch state := strings.ToLower(items[1].Value); state {
		case "fixed":
			p.Fixed = true
		case "free", "shared", "independent":
			p.Fixed = false
		default:
			return Param{}, errors.Wrapf(ErrInvalidEntry, "unknown state %q", state)
		}
	}
	if len(items) > 2 {
		if len(items) != 5 {
			return Param{}, errors.Wrap(ErrInvalidEntry, "prior needs a, b and kind")
		}
		a, err := strconv.ParseFloat(items[2].Value, 64)
		if err != nil {
			return Param{}, errors.Wrap(ErrInvalidEntry, "prior a is not a number")
		}
		b, err := strconv.ParseFloat(items[3].Value, 64)
		if err != nil {
			return Param{}, errors.Wrap(ErrInvalidEntry, "prior b is not a number")
		}
		p.Prior = &Prior{Kind: items[4].Value, A: a, B: b}
	}
	return p, nil
}
