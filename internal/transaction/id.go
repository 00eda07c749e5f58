package transaction

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	idBatchSize = 10
	idMaxRounds = 50
)

// IDLookup reports which of the candidate user-facing ids already exist for a budget.
type IDLookup interface {
	ExistingUserTxIDs(ctx context.Context, budgetID uuid.UUID, candidates []string) ([]string, error)
}

// IDGenerator synthesizes user-facing transaction ids of the form
// P + YYYYMMDD + 6-digit counter + last 6 chars of the reference id.
// The store decides what is taken; ids handed out by this generator are
// remembered so one run never issues the same id twice.
type IDGenerator struct {
	lookup IDLookup
	intn   func(n int) int
	issued map[string]struct{}
}

func NewIDGenerator(lookup IDLookup) *IDGenerator {
	return &IDGenerator{
		lookup: lookup,
		intn:   rand.IntN,
		issued: make(map[string]struct{}),
	}
}

// WithRand replaces the random counter source.
func (g *IDGenerator) WithRand(intn func(n int) int) *IDGenerator {
	g.intn = intn
	return g
}

func (g *IDGenerator) Generate(ctx context.Context, budgetID uuid.UUID, date time.Time, ref string) (string, error) {
	prefix := "P" + date.Format("20060102")
	tail := suffix(ref)

	for range idMaxRounds {
		candidates := make([]string, 0, idBatchSize)
		seen := make(map[string]struct{}, idBatchSize)

		for range idBatchSize {
			c := fmt.Sprintf("%s%06d%s", prefix, g.intn(1_000_000), tail)
			if _, dup := seen[c]; dup {
				continue
			}

			if _, dup := g.issued[c]; dup {
				continue
			}

			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}

		if len(candidates) == 0 {
			continue
		}

		taken, err := g.lookup.ExistingUserTxIDs(ctx, budgetID, candidates)
		if err != nil {
			return "", fmt.Errorf("checking user transaction ids: %w", err)
		}

		takenSet := make(map[string]struct{}, len(taken))
		for _, t := range taken {
			takenSet[t] = struct{}{}
		}

		for _, c := range candidates {
			if _, ok := takenSet[c]; ok {
				continue
			}

			g.issued[c] = struct{}{}

			return c, nil
		}
	}

	return "", fmt.Errorf("no free user transaction id for %s after %d rounds", prefix+tail, idMaxRounds)
}

func suffix(ref string) string {
	if len(ref) >= 6 {
		return ref[len(ref)-6:]
	}

	return strings.Repeat("0", 6-len(ref)) + ref
}
