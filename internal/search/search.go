// Package search indexes plan definitions for lookup by free text.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/alexanderramin/planbook/internal/domain"
)

// Hit is a single search result.
type Hit struct {
	ID    string
	Alias string
	Name  string
	Score int
}

// Provider indexes definitions and answers queries against them.
type Provider interface {
	Index(ctx context.Context, def *domain.PlanDefinition) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

type entry struct {
	alias  string
	name   string
	tokens map[string]bool
}

// MemoryIndex is an in-process Provider. It is safe for concurrent use.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]entry)}
}

// Index adds def, replacing any earlier entry with the same id.
func (m *MemoryIndex) Index(_ context.Context, def *domain.PlanDefinition) error {
	if def == nil {
		return domain.NewNullInputError("definition")
	}

	tokens := make(map[string]bool)
	for _, field := range append([]string{def.Alias(), def.Name(), def.Description}, def.Classifications...) {
		for _, tok := range Tokenize(field) {
			tokens[tok] = true
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[def.ID()] = entry{alias: def.Alias(), name: def.Name(), tokens: tokens}
	return nil
}

// Remove drops id from the index. Removing an unknown id is not an error.
func (m *MemoryIndex) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Search returns entries where every query token prefixes some indexed
// token. Exact token matches score higher. A limit <= 0 means no limit.
func (m *MemoryIndex) Search(_ context.Context, query string, limit int) ([]Hit, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	m.mu.RLock()
	var hits []Hit
	for id, e := range m.entries {
		score, ok := match(e.tokens, terms)
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: id, Alias: e.alias, Name: e.name, Score: score})
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Alias != hits[j].Alias {
			return hits[i].Alias < hits[j].Alias
		}
		return hits[i].ID < hits[j].ID
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Len reports the number of indexed definitions.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func match(tokens map[string]bool, terms []string) (int, bool) {
	score := 0
	for _, term := range terms {
		if tokens[term] {
			score++
			continue
		}
		found := false
		for tok := range tokens {
			if strings.HasPrefix(tok, term) {
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return score, true
}

// Tokenize lowercases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
