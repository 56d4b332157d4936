package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/planbook/internal/domain"
)

// resolvePlanID resolves a plan identifier which can be:
//   - An alias (exact match)
//   - A full plan id
//   - A unique id prefix
func resolvePlanID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("plan ID or alias is required")
	}

	// 1. Exact alias match
	res, err := app.Plans.GetByAlias(ctx, input, nil)
	if err == nil {
		return res.Definition.ID(), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	// 2. Exact id match
	res, err = app.Plans.Get(ctx, input, nil)
	if err == nil {
		return res.Definition.ID(), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	// 3. Id prefix match
	plans, err := app.Plans.List(ctx, nil)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range plans {
		if strings.HasPrefix(p.Definition.ID(), input) {
			matches = append(matches, p.Definition.ID())
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("plan not found: %q: %w", input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("plan ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
