package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/storage"
)

func TestCategoryService_SeedsDefaultsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cats, err := env.svc.Categories.List(ctx, testUser, "")
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories))

	require.NoError(t, env.svc.Categories.EnsureDefaults(ctx, testUser))
	n, err := env.repo.CountCategories(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, len(core.DefaultCategories), n)

	income, err := env.svc.Categories.List(ctx, testUser, core.Income)
	require.NoError(t, err)
	for i, c := range income {
		assert.Equal(t, core.Income, c.Type)
		assert.True(t, c.IsDefault)
		assert.Equal(t, i, c.Order)
	}

	_, err = env.svc.Categories.List(ctx, testUser, "other")
	assert.True(t, core.IsValidation(err))
}

func TestCategoryService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.Categories.Create(ctx, testUser, "Pets", core.Expense, "#123456")
	require.NoError(t, err)
	assert.False(t, c.IsDefault)

	expenses, err := env.svc.Categories.List(ctx, testUser, core.Expense)
	require.NoError(t, err)
	assert.Equal(t, c.ID, expenses[len(expenses)-1].ID)

	_, err = env.svc.Categories.Create(ctx, testUser, "pets", core.Expense, "")
	assert.ErrorIs(t, err, core.ErrConflict)

	// same name under the other type is fine
	_, err = env.svc.Categories.Create(ctx, testUser, "Pets", core.Income, "")
	assert.NoError(t, err)

	_, err = env.svc.Categories.Create(ctx, testUser, "Bad", core.Expense, "red")
	assert.True(t, core.IsValidation(err))
}

func TestCategoryService_DefaultsAreReadOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cats, err := env.svc.Categories.List(ctx, testUser, core.Expense)
	require.NoError(t, err)
	def := cats[0]

	_, err = env.svc.Categories.Rename(ctx, testUser, def.ID, "Renamed", "")
	assert.ErrorIs(t, err, core.ErrDefaultCategory)
	assert.ErrorIs(t, env.svc.Categories.Delete(ctx, testUser, def.ID), core.ErrDefaultCategory)
}

func TestCategoryService_RenameAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.Categories.Create(ctx, testUser, "Pets", core.Expense, "#123456")
	require.NoError(t, err)

	renamed, err := env.svc.Categories.Rename(ctx, testUser, c.ID, "Animals", "")
	require.NoError(t, err)
	assert.Equal(t, "Animals", renamed.Name)
	assert.Equal(t, "#123456", renamed.Color)

	require.NoError(t, env.svc.Categories.Delete(ctx, testUser, c.ID))
	_, err = env.repo.GetCategory(ctx, testUser, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoryService_Reorder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cats, err := env.svc.Categories.List(ctx, testUser, core.Income)
	require.NoError(t, err)

	ids := make([]string, 0, len(cats))
	for i := len(cats) - 1; i >= 0; i-- {
		ids = append(ids, cats[i].ID)
	}
	require.NoError(t, env.svc.Categories.Reorder(ctx, testUser, core.Income, ids))

	after, err := env.svc.Categories.List(ctx, testUser, core.Income)
	require.NoError(t, err)
	for i, c := range after {
		assert.Equal(t, ids[i], c.ID)
	}

	err = env.svc.Categories.Reorder(ctx, testUser, core.Income, ids[1:])
	assert.True(t, core.IsValidation(err))

	dup := append([]string{ids[0]}, ids[:len(ids)-1]...)
	err = env.svc.Categories.Reorder(ctx, testUser, core.Income, dup)
	assert.True(t, core.IsValidation(err))
}

func TestCategoryService_DefaultsConvergeAcrossDevices(t *testing.T) {
	ctx := context.Background()
	a := newTestEnv(t)
	b := newTestEnvWithRemote(t, a.remote)

	_, err := a.svc.Categories.List(ctx, testUser, "")
	require.NoError(t, err)
	NewSyncProcessor(a.repo, a.remote, testSyncConfig()).ProcessBatch(ctx)

	_, err = b.svc.Categories.List(ctx, testUser, "")
	require.NoError(t, err)
	res, err := b.svc.Hydrator.Hydrate(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Failed)
	NewSyncProcessor(b.repo, b.remote, testSyncConfig()).ProcessBatch(ctx)

	assert.Equal(t, len(core.DefaultCategories), a.remote.Len(testUser, storage.EntityCategories))

	catsA, err := a.svc.Categories.List(ctx, testUser, "")
	require.NoError(t, err)
	catsB, err := b.svc.Categories.List(ctx, testUser, "")
	require.NoError(t, err)
	require.Len(t, catsB, len(catsA))
	for i := range catsA {
		assert.Equal(t, catsA[i].ID, catsB[i].ID)
	}
}
