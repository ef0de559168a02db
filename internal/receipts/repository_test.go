package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryListByUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	older := &Receipt{SessionID: uuid.New(), UserID: "u1", ProjectID: "p1", Title: "Old", SubmittedAt: now.Add(-time.Hour)}
	newer := &Receipt{SessionID: uuid.New(), UserID: "u1", ProjectID: "p2", Title: "New", SubmittedAt: now}
	other := &Receipt{SessionID: uuid.New(), UserID: "u2", ProjectID: "p3", Title: "Other", SubmittedAt: now}

	for _, rc := range []*Receipt{older, newer, other} {
		require.NoError(t, repo.Create(ctx, rc))
		assert.NotEqual(t, uuid.Nil, rc.ID)
	}

	list, err := repo.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Title)
	assert.Equal(t, "Old", list[1].Title)

	limited, err := repo.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
