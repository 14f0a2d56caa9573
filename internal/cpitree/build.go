package cpitree

import (
	"fmt"
	"log/slog"
	"strings"

	"cpikit/internal/cpi"
	"cpikit/internal/metrics"
)

// PlaceholderPrefix starts the label synthesized for a group code missing
// from the vocabulary.
const PlaceholderPrefix = "Group "

// Hierarchy describes how flat item codes nest into groups.
type Hierarchy struct {
	// Characters holds the code prefix length of every depth, strictly
	// ascending. The last entry is the item level, where full codes are used.
	Characters []int `yaml:"characters"`
	// GroupCodes and GroupNames are the label vocabulary of the non-leaf
	// nodes, matched by exact code.
	GroupCodes []string `yaml:"group_codes"`
	GroupNames []string `yaml:"group_names"`
	RootCode   string   `yaml:"root_code"`
	RootName   string   `yaml:"root_name"`
}

// Validate checks the prefix lengths and the vocabulary sizes.
func (h Hierarchy) Validate() error {
	if len(h.Characters) < 2 {
		return fmt.Errorf("%w: need at least 2 depths, got %d", ErrInvalidCharacters, len(h.Characters))
	}
	for i, c := range h.Characters {
		if c <= 0 {
			return fmt.Errorf("%w: depth %d has length %d", ErrInvalidCharacters, i, c)
		}
		if i > 0 && c <= h.Characters[i-1] {
			return fmt.Errorf("%w: depth %d length %d does not exceed %d", ErrInvalidCharacters, i, c, h.Characters[i-1])
		}
	}
	if len(h.GroupCodes) != len(h.GroupNames) {
		return fmt.Errorf("%w: %d codes, %d names", ErrVocabularyMismatch, len(h.GroupCodes), len(h.GroupNames))
	}
	return nil
}

type builder struct {
	codes  []string
	chars  []int
	labels map[string]string
	base   *cpi.FullCPIBase
	logger *slog.Logger
}

// BuildTree nests codes into groups following h, reading item names and
// weights from base, and wraps the top level in a root group labelled with
// h.RootCode and h.RootName.
func BuildTree(codes []string, h Hierarchy, base *cpi.FullCPIBase, logger *slog.Logger) (*Group, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(h.GroupCodes))
	for i, code := range h.GroupCodes {
		labels[code] = h.GroupNames[i]
	}

	b := &builder{
		codes:  codes,
		chars:  h.Characters,
		labels: labels,
		base:   base,
		logger: logger,
	}

	top, err := b.level("", 0)
	if err != nil {
		return nil, err
	}
	root, err := NewGroup(h.RootCode, h.RootName, top...)
	if err != nil {
		return nil, &BuildError{Code: h.RootCode, Err: err}
	}

	items, groups := Count(root)
	metrics.TreeBuilt(items + groups)
	logger.Debug("built classification tree",
		slog.String("root", h.RootCode),
		slog.Int("items", items),
		slog.Int("groups", groups),
	)
	return root, nil
}

// level returns the nodes at the given depth below prefix.
func (b *builder) level(prefix string, depth int) ([]Node, error) {
	var selected []string
	for _, code := range b.codes {
		if strings.HasPrefix(code, prefix) {
			selected = append(selected, code)
		}
	}

	if depth == len(b.chars)-1 {
		nodes := make([]Node, 0, len(selected))
		for _, code := range selected {
			it, err := b.item(code)
			if err != nil {
				return nil, &BuildError{Code: code, Depth: depth, Err: err}
			}
			nodes = append(nodes, it)
		}
		return nodes, nil
	}

	length := b.chars[depth]
	var prefixes []string
	seen := make(map[string]bool)
	for _, code := range selected {
		if len(code) <= length {
			return nil, &BuildError{Code: code, Depth: depth, Err: ErrShortCode}
		}
		p := code[:length]
		if !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}

	nodes := make([]Node, 0, len(prefixes))
	for _, p := range prefixes {
		children, err := b.level(p, depth+1)
		if err != nil {
			return nil, err
		}
		g, err := NewGroup(p, b.label(p), children...)
		if err != nil {
			return nil, &BuildError{Code: p, Depth: depth, Err: err}
		}
		nodes = append(nodes, g)
	}
	return nodes, nil
}

func (b *builder) item(code string) (*Item, error) {
	j, ok := b.base.Lookup(code)
	if !ok {
		return nil, ErrUnknownCode
	}
	return NewItem(code, b.base.Names[j], b.base.W[j])
}

func (b *builder) label(code string) string {
	if name, ok := b.labels[code]; ok {
		return name
	}
	placeholder := PlaceholderPrefix + code
	b.logger.Warn("group code missing from label vocabulary",
		slog.String("code", code),
		slog.String("placeholder", placeholder),
	)
	metrics.PlaceholderLabel()
	return placeholder
}
