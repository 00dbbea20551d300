package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucook/accessflow/audit"
	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

func (f *fixture) request(t *testing.T, requester *model.User, target *model.User, tiers ...*model.AccessTier) *model.AccessRequest {
	t.Helper()
	input := model.CreateRequestInput{TargetUserID: target.ID}
	for _, tier := range tiers {
		input.Items = append(input.Items, model.RequestItemInput{SystemInstanceID: f.I1.ID, AccessTierID: tier.ID})
	}
	r, err := f.svc.Request.CreateRequest(context.Background(), input, requester.ID)
	require.NoError(t, err)
	return r
}

func TestCreateRequestByDirectManagerAutoApproves(t *testing.T) {
	f := newFixture(t)
	r := f.request(t, f.M, f.E, f.T1)

	assert.Equal(t, model.RequestApproved, r.Status)
	require.Len(t, r.Items, 1)
	assert.Equal(t, model.RequestApproved, r.Items[0].Status)
	require.NotNil(t, r.Items[0].AccessGrantID)

	grants := f.activeGrants(t, f.E)
	require.Len(t, grants, 1)
	assert.Equal(t, *r.Items[0].AccessGrantID, grants[0].ID)
	require.NotNil(t, grants[0].GrantedByID)
	assert.Equal(t, f.M.ID, *grants[0].GrantedByID)

	assert.Equal(t, 0, f.notifier.Count("manager", util.ActionRequest))
	assert.Equal(t, 1, f.notifier.Count("owners", util.ActionApprove))
	assert.Contains(t, f.audit.Actions(), audit.ActionRequestCreated)
}

func TestAutoApprovalIsIdempotent(t *testing.T) {
	f := newFixture(t)
	first := f.request(t, f.M, f.E, f.T1)
	second := f.request(t, f.M, f.E, f.T1)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.RequestApproved, second.Status)
	assert.Equal(t, model.RequestApproved, second.Items[0].Status)

	grants := f.activeGrants(t, f.E)
	require.Len(t, grants, 1)
	require.NotNil(t, second.Items[0].AccessGrantID)
	assert.Equal(t, grants[0].ID, *second.Items[0].AccessGrantID)
}

func TestCreateRequestByNonManagerWaitsForApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.request(t, f.N, f.E, f.T1)

	assert.Equal(t, model.RequestRequested, r.Status)
	assert.Equal(t, model.RequestRequested, r.Items[0].Status)
	assert.Empty(t, f.activeGrants(t, f.E))
	assert.Equal(t, 1, f.notifier.Count("manager", util.ActionRequest))

	item, err := f.svc.Request.ApproveItem(ctx, r.Items[0].ID, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, item.Status)
	assert.Nil(t, item.AccessGrantID)

	item, err = f.svc.Request.ProvisionItem(ctx, item.ID, f.O.ID)
	require.NoError(t, err)
	require.NotNil(t, item.AccessGrantID)

	grant, err := f.svc.Grant.GetGrant(ctx, *item.AccessGrantID)
	require.NoError(t, err)
	assert.Equal(t, f.E.ID, grant.UserID)
	assert.Equal(t, model.GrantActive, grant.Status)
	require.NotNil(t, grant.GrantedByID)
	assert.Equal(t, f.O.ID, *grant.GrantedByID)

	reloaded, err := f.svc.Request.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, reloaded.Status)

	_, err = f.svc.Request.ProvisionItem(ctx, item.ID, f.O.ID)
	assert.ErrorIs(t, err, af_errors.ErrItemAlreadyLinked)
}

func TestCreateRequestValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Request.CreateRequest(ctx, model.CreateRequestInput{TargetUserID: f.E.ID}, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrEmptyRequest)

	_, err = f.svc.Request.CreateRequest(ctx, model.CreateRequestInput{
		TargetUserID: f.E.ID,
		Items: []model.RequestItemInput{
			{SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID},
			{SystemInstanceID: f.I1.ID, AccessTierID: f.T2.ID},
		},
	}, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrUnprocessable)

	_, err = f.svc.Request.CreateRequest(ctx, model.CreateRequestInput{
		TargetUserID: "missing",
		Items:        []model.RequestItemInput{{SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID}},
	}, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrNotFound)

	_, err = f.svc.Request.CreateRequest(ctx, model.CreateRequestInput{
		TargetUserID: f.E.ID,
		Items:        []model.RequestItemInput{{SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID}},
	}, "missing")
	assert.ErrorIs(t, err, af_errors.ErrRequesterNotFound)

	// nothing was persisted by the failed attempts
	page, err := f.svc.Request.FindAll(ctx, model.RequestFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}

func TestItemDecisionsRequireOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.request(t, f.N, f.E, f.T1)
	itemID := r.Items[0].ID

	_, err := f.svc.Request.ApproveItem(ctx, itemID, f.M.ID)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)
	_, err = f.svc.Request.RejectItem(ctx, itemID, f.N.ID, nil)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)

	_, err = f.svc.Request.ApproveItem(ctx, itemID, f.O.ID)
	require.NoError(t, err)
	_, err = f.svc.Request.ProvisionItem(ctx, itemID, f.N.ID)
	assert.ErrorIs(t, err, af_errors.ErrForbidden)
	assert.Empty(t, f.activeGrants(t, f.E))
}

func TestItemDecisionAggregatesRequestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("all approved", func(t *testing.T) {
		f := newFixture(t)
		r := f.request(t, f.N, f.E, f.T1, f.T1b)

		_, err := f.svc.Request.ApproveItem(ctx, r.Items[0].ID, f.O.ID)
		require.NoError(t, err)
		reloaded, err := f.svc.Request.GetRequest(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestRequested, reloaded.Status)

		_, err = f.svc.Request.ApproveItem(ctx, r.Items[1].ID, f.O.ID)
		require.NoError(t, err)
		reloaded, err = f.svc.Request.GetRequest(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, reloaded.Status)
	})

	t.Run("any rejected", func(t *testing.T) {
		f := newFixture(t)
		r := f.request(t, f.N, f.E, f.T1, f.T1b)

		item, err := f.svc.Request.RejectItem(ctx, r.Items[0].ID, f.O.ID, strptr("not needed"))
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, item.Status)
		require.NotNil(t, item.RejectionReason)
		assert.Equal(t, "not needed", *item.RejectionReason)

		_, err = f.svc.Request.ApproveItem(ctx, r.Items[1].ID, f.O.ID)
		require.NoError(t, err)
		reloaded, err := f.svc.Request.GetRequest(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, reloaded.Status)
		assert.Equal(t, 1, f.notifier.Count("requester", util.ActionReject))
	})

	t.Run("decided items are terminal", func(t *testing.T) {
		f := newFixture(t)
		r := f.request(t, f.N, f.E, f.T1)
		_, err := f.svc.Request.RejectItem(ctx, r.Items[0].ID, f.O.ID, nil)
		require.NoError(t, err)

		_, err = f.svc.Request.ApproveItem(ctx, r.Items[0].ID, f.O.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be in 'requested' status")

		_, err = f.svc.Request.ProvisionItem(ctx, r.Items[0].ID, f.O.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot provision item in status rejected")
	})
}

func TestProvisionRequiresApprovedItem(t *testing.T) {
	f := newFixture(t)
	r := f.request(t, f.N, f.E, f.T1)

	_, err := f.svc.Request.ProvisionItem(context.Background(), r.Items[0].ID, f.O.ID)
	assert.ErrorIs(t, err, af_errors.ErrBadRequest)
	assert.Contains(t, err.Error(), "Cannot provision item in status requested")
}

func TestManagerDecisions(t *testing.T) {
	ctx := context.Background()

	t.Run("approve cascades without granting", func(t *testing.T) {
		f := newFixture(t)
		r := f.request(t, f.N, f.E, f.T1, f.T1b)

		pending, err := f.svc.Request.FindPendingForManager(ctx, f.M.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, r.ID, pending[0].ID)

		_, err = f.svc.Request.ApproveRequest(ctx, r.ID, f.N.ID)
		assert.ErrorIs(t, err, af_errors.ErrNotManager)
		_, err = f.svc.Request.ApproveRequest(ctx, r.ID, f.O.ID)
		assert.ErrorIs(t, err, af_errors.ErrForbidden)

		approved, err := f.svc.Request.ApproveRequest(ctx, r.ID, f.M.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, approved.Status)
		for _, item := range approved.Items {
			assert.Equal(t, model.RequestApproved, item.Status)
			assert.Nil(t, item.AccessGrantID)
		}
		assert.Empty(t, f.activeGrants(t, f.E))

		pending, err = f.svc.Request.FindPendingForManager(ctx, f.M.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		_, err = f.svc.Request.RejectRequest(ctx, r.ID, f.M.ID, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid status transition")
	})

	t.Run("reject records the reason", func(t *testing.T) {
		f := newFixture(t)
		r := f.request(t, f.N, f.E, f.T1, f.T1b)

		rejected, err := f.svc.Request.RejectRequest(ctx, r.ID, f.M.ID, strptr("no business need"))
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, rejected.Status)
		require.NotNil(t, rejected.Note)
		assert.Equal(t, "no business need", *rejected.Note)
		for _, item := range rejected.Items {
			assert.Equal(t, model.RequestRejected, item.Status)
			require.NotNil(t, item.RejectionReason)
		}
		assert.Contains(t, f.audit.Actions(), audit.ActionRequestRejected)
	})
}

func TestManagerRejectionBlocksOwnerApprovedItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.request(t, f.N, f.E, f.T1, f.T1b)

	_, err := f.svc.Request.ApproveItem(ctx, r.Items[0].ID, f.O.ID)
	require.NoError(t, err)
	queue, err := f.svc.Request.FindPendingProvisioning(ctx, f.O.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	rejected, err := f.svc.Request.RejectRequest(ctx, r.ID, f.M.ID, strptr("not needed"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, rejected.Status)
	require.NotNil(t, rejected.ManagerDecision)
	assert.Equal(t, model.RequestRejected, *rejected.ManagerDecision)

	queue, err = f.svc.Request.FindPendingProvisioning(ctx, f.O.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)

	_, err = f.svc.Request.ProvisionItem(ctx, r.Items[0].ID, f.O.ID)
	assert.ErrorIs(t, err, af_errors.ErrRejectedByManager)
	result := f.svc.Request.BulkProvision(ctx, []string{r.Items[0].ID}, f.O.ID)
	assert.Empty(t, result.Successful)
	require.Len(t, result.Failed, 1)
	assert.Empty(t, f.activeGrants(t, f.E))

	// the blocked item no longer counts as a pending request for the target
	f.grant(t, f.N, f.T1)
	report, err := f.svc.Request.CopyGrantsFromUser(ctx, model.CopyGrantsInput{
		SourceUserID: f.N.ID,
		TargetUserID: f.E.ID,
	}, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Skipped)
}

func TestProvisioningQueueAndBulkProvision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.request(t, f.N, f.E, f.T1, f.T1b)
	_, err := f.svc.Request.ApproveRequest(ctx, r.ID, f.M.ID)
	require.NoError(t, err)

	queue, err := f.svc.Request.FindPendingProvisioning(ctx, f.O.ID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.NotNil(t, queue[0].AccessRequest)
	assert.Equal(t, f.E.ID, queue[0].AccessRequest.TargetUserID)

	queue, err = f.svc.Request.FindPendingProvisioning(ctx, f.N.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)

	result := f.svc.Request.BulkProvision(ctx, []string{r.Items[0].ID, "missing", r.Items[1].ID}, f.O.ID)
	assert.Equal(t, []string{r.Items[0].ID, r.Items[1].ID}, result.Successful)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing", result.Failed[0].ID)
	assert.Len(t, f.activeGrants(t, f.E), 2)

	queue, err = f.svc.Request.FindPendingProvisioning(ctx, f.O.ID)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestFindRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.request(t, f.N, f.E, f.T1)
	f.request(t, f.M, f.E, f.T1b)

	mine, err := f.svc.Request.FindMine(ctx, f.N.ID, model.RequestFilter{RequesterID: f.M.ID})
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, f.N.ID, mine.Data[0].RequesterID)
	assert.EqualValues(t, 1, mine.Total)

	// a requester with more than MaxPageLimit requests can still reach the rest
	for i := 0; i < model.MaxPageLimit; i++ {
		f.request(t, f.N, f.E, f.T1)
	}
	mine, err = f.svc.Request.FindMine(ctx, f.N.ID, model.RequestFilter{Page: 2, Limit: model.MaxPageLimit})
	require.NoError(t, err)
	assert.EqualValues(t, model.MaxPageLimit+1, mine.Total)
	assert.Len(t, mine.Data, 1)
	assert.Equal(t, 2, mine.Page)

	page, err := f.svc.Request.FindAll(ctx, model.RequestFilter{Status: model.RequestApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.Request.FindAll(ctx, model.RequestFilter{Status: "pending"})
	assert.ErrorIs(t, err, af_errors.ErrBadRequest)
}

func TestCopyGrantsFromUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.grant(t, f.E, f.T1)
	f.grant(t, f.E, f.T1b)
	_, err := f.svc.Grant.CreateGrant(ctx, model.CreateGrantInput{
		UserID: f.E.ID, SystemInstanceID: f.I2.ID, AccessTierID: f.T2.ID,
	}, f.O.ID)
	require.NoError(t, err)

	// N already holds T1 and has T1b pending
	f.grant(t, f.N, f.T1)
	f.request(t, f.O, f.N, f.T1b)

	report, err := f.svc.Request.CopyGrantsFromUser(ctx, model.CopyGrantsInput{
		SourceUserID: f.E.ID,
		TargetUserID: f.N.ID,
	}, f.O.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Results, 3)

	reasons := map[string]string{}
	for _, result := range report.Results {
		reasons[result.TierName] = result.Reason
		if result.Outcome == model.CopyCreated {
			require.NotNil(t, result.RequestID)
			assert.Equal(t, "Metabase", result.SystemName)
		}
	}
	assert.Equal(t, "target already has this access", reasons["Viewer"])
	assert.Equal(t, "target already has a pending request for this access", reasons["Editor"])

	report, err = f.svc.Request.CopyGrantsFromUser(ctx, model.CopyGrantsInput{
		SourceUserID:     f.E.ID,
		TargetUserID:     f.N.ID,
		ExcludeSystemIDs: []string{f.S1.ID},
	}, f.O.ID)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, model.CopySkipped, report.Results[0].Outcome)

	_, err = f.svc.Request.CopyGrantsFromUser(ctx, model.CopyGrantsInput{SourceUserID: f.E.ID, TargetUserID: f.E.ID}, f.O.ID)
	assert.ErrorIs(t, err, af_errors.ErrSameSourceAndTarget)
}

func TestCopyGrantsByManagerAutoApproves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grant(t, f.N, f.T1)

	report, err := f.svc.Request.CopyGrantsFromUser(ctx, model.CopyGrantsInput{SourceUserID: f.N.ID, TargetUserID: f.E.ID}, f.M.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Len(t, f.activeGrants(t, f.E), 1)
}
