package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucook/accessflow/audit"
	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

func TestCreateGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate active grant conflicts", func(t *testing.T) {
		f := newFixture(t)
		input := model.CreateGrantInput{UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID}

		g, err := f.svc.Grant.CreateGrant(ctx, input, f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, model.GrantActive, g.Status)
		assert.Nil(t, g.RemovedAt)
		require.NotNil(t, g.SystemInstance)
		require.NotNil(t, g.SystemInstance.System)
		assert.Equal(t, "Magento", g.SystemInstance.System.Name)
		require.NotNil(t, g.GrantedByID)
		assert.Equal(t, f.O.ID, *g.GrantedByID)

		_, err = f.svc.Grant.CreateGrant(ctx, input, f.O.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, af_errors.ErrConflict)
		assert.Contains(t, err.Error(), "Active grant already exists")
		assert.Len(t, f.activeGrants(t, f.E), 1)
	})

	t.Run("tier from another system is unprocessable", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Grant.CreateGrant(ctx, model.CreateGrantInput{
			UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T2.ID,
		}, f.O.ID)
		assert.ErrorIs(t, err, af_errors.ErrUnprocessable)
	})

	t.Run("missing references are not found", func(t *testing.T) {
		f := newFixture(t)
		cases := map[string]model.CreateGrantInput{
			"user":     {UserID: "missing", SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID},
			"instance": {UserID: f.E.ID, SystemInstanceID: "missing", AccessTierID: f.T1.ID},
			"tier":     {UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: "missing"},
			"grantor":  {UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID, GrantedByID: strptr("missing")},
		}
		for name, input := range cases {
			_, err := f.svc.Grant.CreateGrant(ctx, input, f.O.ID)
			assert.ErrorIs(t, err, af_errors.ErrNotFound, name)
		}
	})

	t.Run("historical rows skip the duplicate check", func(t *testing.T) {
		f := newFixture(t)
		f.grant(t, f.E, f.T1)
		g, err := f.svc.Grant.CreateGrant(ctx, model.CreateGrantInput{
			UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID, Status: model.GrantRemoved,
		}, f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, model.GrantRemoved, g.Status)
		assert.NotNil(t, g.RemovedAt)
	})

	t.Run("audited and notified", func(t *testing.T) {
		f := newFixture(t)
		f.grant(t, f.E, f.T1)
		assert.Contains(t, f.audit.Actions(), audit.ActionGrantCreated)
		assert.Equal(t, 1, f.notifier.Count("requester", util.ActionActivate))
	})
}

func TestCreateGrantConcurrentSameTriple(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := model.CreateGrantInput{UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Grant.CreateGrant(ctx, input, f.O.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, af_errors.ErrActiveGrantExists)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.activeGrants(t, f.E), 1)
}

func TestGrantStatusTimestampCoupling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.grant(t, f.E, f.T1)

	g, err := f.svc.Grant.MarkToRemove(ctx, g.ID, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantToRemove, g.Status)
	assert.Nil(t, g.RemovedAt)

	g, err = f.svc.Grant.CancelRemoval(ctx, g.ID, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantActive, g.Status)
	assert.Nil(t, g.RemovedAt)

	_, err = f.svc.Grant.MarkToRemove(ctx, g.ID, f.O.ID)
	require.NoError(t, err)
	g, err = f.svc.Grant.MarkRemoved(ctx, g.ID, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantRemoved, g.Status)
	assert.NotNil(t, g.RemovedAt)

	// removed is terminal on every path
	_, err = f.svc.Grant.UpdateStatus(ctx, g.ID, model.GrantActive, f.O.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid status transition for Grant from 'removed' to 'active'")
	_, err = f.svc.Grant.CancelRemoval(ctx, g.ID, f.O.ID)
	assert.Contains(t, err.Error(), "must be in 'to_remove' status")
}

func TestMarkRemovedFromActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.grant(t, f.E, f.T1)

	_, err := f.svc.Grant.MarkRemoved(ctx, g.ID, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)

	g, err = f.svc.Grant.MarkRemoved(ctx, g.ID, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantRemoved, g.Status)
	assert.NotNil(t, g.RemovedAt)
	assert.Empty(t, f.activeGrants(t, f.E))

	_, err = f.svc.Grant.MarkRemoved(ctx, g.ID, f.O.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be in 'active' or 'to_remove' status")

	result := f.svc.Grant.BulkMarkRemoved(ctx, []string{f.grant(t, f.E, f.T1b).ID}, f.O.ID)
	assert.Len(t, result.Successful, 1)
	assert.Empty(t, result.Failed)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		g := f.grant(t, f.E, f.T1)
		_, err := f.svc.Grant.UpdateStatus(ctx, g.ID, "paused", f.O.ID)
		assert.ErrorIs(t, err, af_errors.ErrBadRequest)
	})

	t.Run("missing grant", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Grant.UpdateStatus(ctx, "missing", model.GrantRemoved, f.O.ID)
		assert.ErrorIs(t, err, af_errors.ErrNotFound)
	})

	t.Run("reactivation against a newer active grant conflicts", func(t *testing.T) {
		f := newFixture(t)
		old := f.grant(t, f.E, f.T1)
		_, err := f.svc.Grant.MarkToRemove(ctx, old.ID, f.O.ID)
		require.NoError(t, err)
		f.grant(t, f.E, f.T1)

		_, err = f.svc.Grant.CancelRemoval(ctx, old.ID, f.O.ID)
		assert.ErrorIs(t, err, af_errors.ErrConflict)
		assert.Len(t, f.activeGrants(t, f.E), 1)
	})
}

func TestGrantRemovalRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.grant(t, f.E, f.T1)

	_, err := f.svc.Grant.MarkToRemove(ctx, g.ID, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)
	_, err = f.svc.Grant.MarkToRemove(ctx, g.ID, f.M.ID)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)

	current, err := f.svc.Grant.GetGrant(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GrantActive, current.Status)
}

func TestBulkMarkToRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := f.grant(t, f.E, f.T1)
	removed := f.grant(t, f.E, f.T1b)
	_, err := f.svc.Grant.UpdateStatus(ctx, removed.ID, model.GrantRemoved, f.O.ID)
	require.NoError(t, err)

	result := f.svc.Grant.BulkMarkToRemove(ctx, []string{valid.ID, removed.ID, "missing"}, f.O.ID)
	assert.Equal(t, []string{valid.ID}, result.Successful)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, removed.ID, result.Failed[0].ID)
	assert.Contains(t, result.Failed[0].Reason, "must be in 'active' status")
	assert.Equal(t, "missing", result.Failed[1].ID)

	pending, err := f.svc.Grant.FindPendingRemoval(ctx, f.O.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, valid.ID, pending[0].ID)

	result = f.svc.Grant.BulkMarkRemoved(ctx, []string{valid.ID}, f.O.ID)
	assert.Equal(t, []string{valid.ID}, result.Successful)
	assert.Empty(t, result.Failed)
}

func TestFindPendingRemovalIsScopedToOwnedSystems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.grant(t, f.E, f.T1)
	_, err := f.svc.Grant.MarkToRemove(ctx, g.ID, f.O.ID)
	require.NoError(t, err)

	pending, err := f.svc.Grant.FindPendingRemoval(ctx, f.N.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFindAllGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, f.E, f.T1)
	f.grant(t, f.N, f.T1)
	f.grant(t, f.N, f.T1b)

	page, err := f.svc.Grant.FindAll(ctx, model.GrantFilter{UserSearch: "noa", Limit: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, model.MaxPageLimit, page.Limit)

	page, err = f.svc.Grant.FindAll(ctx, model.GrantFilter{SystemID: f.S1.ID, SortBy: model.SortByUserName, SortOrder: "asc", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, f.E.ID, page.Data[0].UserID)

	_, err = f.svc.Grant.FindAll(ctx, model.GrantFilter{Status: "gone"})
	assert.ErrorIs(t, err, af_errors.ErrBadRequest)
}
