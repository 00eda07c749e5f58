package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	taken map[string]bool
	calls int
	err   error
}

func (f *fakeLookup) ExistingUserTxIDs(_ context.Context, _ uuid.UUID, candidates []string) ([]string, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	var out []string

	for _, c := range candidates {
		if f.taken[c] {
			out = append(out, c)
		}
	}

	return out, nil
}

func sequence(values ...int) func(int) int {
	i := 0

	return func(int) int {
		v := values[i%len(values)]
		i++

		return v
	}
}

func TestIDGenerator_Generate(t *testing.T) {
	budgetID := uuid.New()
	date := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		lookup  *fakeLookup
		rand    func(int) int
		ref     string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{
			name:   "Format",
			lookup: &fakeLookup{},
			rand:   sequence(42),
			ref:    "txn_abcdef123456",
			want:   "P20260509000042123456",
		},
		{
			name:   "ShortReferencePadded",
			lookup: &fakeLookup{},
			rand:   sequence(7),
			ref:    "ab",
			want:   "P202605090000070000ab",
		},
		{
			name:   "SkipsTakenCandidates",
			lookup: &fakeLookup{taken: map[string]bool{"P20260509000001123456": true}},
			rand:   sequence(1, 2),
			ref:    "123456",
			want:   "P20260509000002123456",
		},
		{
			name:    "LookupError",
			lookup:  &fakeLookup{err: errors.New("db down")},
			rand:    sequence(1),
			ref:     "123456",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewIDGenerator(tt.lookup).WithRand(tt.rand)

			got, err := g.Generate(context.Background(), budgetID, date, tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIDGenerator_UniqueWithinRun(t *testing.T) {
	budgetID := uuid.New()
	date := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)

	// A counter source that cycles through few values forces the generator
	// to reject ids it already issued.
	g := NewIDGenerator(&fakeLookup{}).WithRand(sequence(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14))

	seen := make(map[string]bool)

	for range 15 {
		id, err := g.Generate(context.Background(), budgetID, date, "same-ref")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)

		seen[id] = true
	}
}

func TestIDGenerator_Exhausted(t *testing.T) {
	g := NewIDGenerator(&fakeLookup{taken: map[string]bool{"P20260509000000123456": true}}).WithRand(sequence(0))

	_, err := g.Generate(context.Background(), uuid.New(), time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), "123456")
	assert.Error(t, err)
}
