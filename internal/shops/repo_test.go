package shops

import (
	"context"
	"testing"

	"github.com/bargen/bargen-backend/pkg/db/dbtest"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepositoryListByOwnerAndFindByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	a := &models.Shop{Owner: "alice", Name: "A", Address: "x", Rating: 3}
	b := &models.Shop{Owner: "alice", Name: "B", Address: "y", Rating: 4}
	c := &models.Shop{Owner: "bob", Name: "C", Address: "z", Rating: 5}
	for _, s := range []*models.Shop{a, b, c} {
		require.NoError(t, repo.Create(ctx, s))
		require.NotEqual(t, uuid.Nil, s.ID)
	}

	mine, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, c.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "C", found[c.ID].Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
