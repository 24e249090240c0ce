package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevision(note string, ts time.Time, tree []*domain.TreeNode) *domain.Revision {
	return &domain.Revision{
		RevisionMeta: domain.RevisionMeta{ID: uuid.New().String(), Note: note, Timestamp: ts},
		Tree:         tree,
	}
}

func TestRevisionRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevisionRepo(db)
	ctx := context.Background()

	tree := []*domain.TreeNode{
		testutil.NewTestNode("WA", domain.KindProgram,
			testutil.NewTestNode("4471", domain.KindActivity)),
	}
	tree[0].ID = "root-1"
	rev := newTestRevision("before revision", time.Now().UTC(), tree)
	require.NoError(t, repo.Create(ctx, rev))

	got, err := repo.GetByID(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, "before revision", got.Note)
	assert.WithinDuration(t, rev.Timestamp, got.Timestamp, time.Millisecond)
	require.Len(t, got.Tree, 1)
	assert.Equal(t, "root-1", got.Tree[0].ID)
	require.Len(t, got.Tree[0].Children, 1)
	assert.Equal(t, "4471", got.Tree[0].Children[0].Code)
}

func TestRevisionRepo_EmptyTree(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevisionRepo(db)
	ctx := context.Background()

	rev := newTestRevision("", time.Now(), nil)
	require.NoError(t, repo.Create(ctx, rev))

	got, err := repo.GetByID(ctx, rev.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tree)
	assert.Empty(t, got.Tree)
}

func TestRevisionRepo_ListNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevisionRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	older := newTestRevision("older", base, nil)
	newer := newTestRevision("newer", base.Add(time.Hour), nil)
	sameAsNewer := newTestRevision("same instant, inserted last", base.Add(time.Hour), nil)
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, sameAsNewer))

	metas, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	assert.Equal(t, sameAsNewer.ID, metas[0].ID)
	assert.Equal(t, newer.ID, metas[1].ID)
	assert.Equal(t, older.ID, metas[2].ID)
}

func TestRevisionRepo_GetAndDeleteMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevisionRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := repo.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	rev := newTestRevision("x", time.Now(), nil)
	require.NoError(t, repo.Create(ctx, rev))
	ok, err = repo.Delete(ctx, rev.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
