package history

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"kolo/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistoryRepo struct {
	gotLimit  int
	gotOffset int
	entries   []repositories.HistoryEntry
	total     int64
}

func (s *stubHistoryRepo) GetHistory(ctx context.Context, userID uint, limit, offset int) ([]repositories.HistoryEntry, int64, error) {
	s.gotLimit = limit
	s.gotOffset = offset
	return s.entries, s.total, nil
}

// sortedHistoryRepo pages over an in-memory entry set with the same
// ordering contract the SQL query carries: created_at desc, id desc.
type sortedHistoryRepo struct {
	entries []repositories.HistoryEntry
}

func (s *sortedHistoryRepo) GetHistory(ctx context.Context, userID uint, limit, offset int) ([]repositories.HistoryEntry, int64, error) {
	sorted := make([]repositories.HistoryEntry, len(s.entries))
	copy(sorted, s.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if offset >= len(sorted) {
		return nil, int64(len(s.entries)), nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], int64(len(s.entries)), nil
}

func TestGetHistory_OrderingAndPagination(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// Insertion order is deliberately scrambled, and two entries
	// share a timestamp so the id tie-break is exercised.
	repo := &sortedHistoryRepo{entries: []repositories.HistoryEntry{
		{ID: "t3", Type: "sent", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t1", Type: "received", CreatedAt: base},
		{ID: "t5", Type: "pending", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "t2", Type: "sent", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t4", Type: "received", CreatedAt: base.Add(1 * time.Hour)},
	}}
	svc := NewService(repo)

	var all []repositories.HistoryEntry
	for offset := 0; ; offset += 2 {
		page, total, err := svc.GetHistory(context.Background(), 1, 2, offset)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
	}

	require.Len(t, all, 5, "pages must concatenate without gaps")
	seen := map[string]bool{}
	for _, e := range all {
		assert.False(t, seen[e.ID], "entry %s appeared twice", e.ID)
		seen[e.ID] = true
	}
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		newer := cur.CreatedAt.Before(prev.CreatedAt) ||
			(cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID < prev.ID)
		assert.True(t, newer, fmt.Sprintf("%s must sort before %s", prev.ID, cur.ID))
	}
	// Equal timestamps break ties on id, newest id first.
	assert.Equal(t, []string{"t5", "t3", "t2", "t4", "t1"},
		[]string{all[0].ID, all[1].ID, all[2].ID, all[3].ID, all[4].ID})
}

func TestGetHistory_LimitClamping(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"zero limit uses default", 0, 0, DefaultLimit, 0},
		{"negative limit uses default", -3, 0, DefaultLimit, 0},
		{"over max is clamped", 500, 0, MaxLimit, 0},
		{"negative offset is zeroed", 10, -5, 10, 0},
		{"sane values pass through", 25, 50, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubHistoryRepo{total: 3}
			svc := NewService(repo)

			_, total, err := svc.GetHistory(context.Background(), 1, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			assert.Equal(t, tt.wantLimit, repo.gotLimit)
			assert.Equal(t, tt.wantOffset, repo.gotOffset)
		})
	}
}
