// Package taxonomy resolves classification ids attached to definitions.
package taxonomy

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planbook/internal/domain"
)

// Classification is a resolved taxonomy entry.
type Classification struct {
	ID    string
	Label string
}

// Resolver turns taxonomy ids into classifications.
type Resolver interface {
	Resolve(ctx context.Context, ids []string) ([]Classification, error)
}

// StaticResolver resolves against a fixed id-to-label table.
type StaticResolver struct {
	labels map[string]string
}

// NewStaticResolver creates a resolver over labels. A nil table accepts
// every id and uses it as its own label.
func NewStaticResolver(labels map[string]string) *StaticResolver {
	return &StaticResolver{labels: labels}
}

// Resolve returns one classification per id, in input order.
func (r *StaticResolver) Resolve(_ context.Context, ids []string) ([]Classification, error) {
	out := make([]Classification, 0, len(ids))
	for _, id := range ids {
		if r.labels == nil {
			out = append(out, Classification{ID: id, Label: id})
			continue
		}
		label, ok := r.labels[id]
		if !ok {
			return nil, fmt.Errorf("classification %q: %w", id, domain.ErrUnknownClassification)
		}
		out = append(out, Classification{ID: id, Label: label})
	}
	return out, nil
}
