package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/test/mock"
	"github.com/ucook/accessflow/test/testdb"
)

// fixture is a small organisation: manager M manages employee E, N is an
// unrelated colleague and O owns system S1 ("Magento"). S2 ("Metabase") has
// no owner.
type fixture struct {
	svc      *service.Services
	audit    *mock.MockAuditService
	notifier *mock.RecordingNotifier

	M, E, N, O *model.User

	S1, S2 *model.System
	I1, I2 *model.SystemInstance
	T1, T2 *model.AccessTier
	T1b    *model.AccessTier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		audit:    mock.NewPermissiveAuditService(),
		notifier: &mock.RecordingNotifier{},
	}

	svc, err := service.InitializeServices(testdb.New(t), service.Options{
		AuditService: f.audit,
		Notifier:     f.notifier,
		BaseURL:      "http://access.test",
		CSVLimits:    service.CSVLimits{MaxBytes: 5 << 20, MaxRows: 1000},
	})
	require.NoError(t, err)
	f.svc = svc

	f.M = f.user(t, "mia.manager@example.com", nil)
	f.E = f.user(t, "eli.employee@example.com", &f.M.ID)
	f.N = f.user(t, "noa.colleague@example.com", nil)
	f.O = f.user(t, "oli.owner@example.com", nil)

	f.S1, err = svc.Resource.CreateSystem(ctx, model.SystemInput{Name: "Magento"})
	require.NoError(t, err)
	f.S2, err = svc.Resource.CreateSystem(ctx, model.SystemInput{Name: "Metabase"})
	require.NoError(t, err)

	f.I1, err = svc.Resource.CreateInstance(ctx, f.S1.ID, model.InstanceInput{Name: "UCOOK Production"})
	require.NoError(t, err)
	f.I2, err = svc.Resource.CreateInstance(ctx, f.S2.ID, model.InstanceInput{Name: "Analytics"})
	require.NoError(t, err)

	f.T1, err = svc.Resource.CreateTier(ctx, f.S1.ID, model.TierInput{Name: "Viewer"})
	require.NoError(t, err)
	f.T1b, err = svc.Resource.CreateTier(ctx, f.S1.ID, model.TierInput{Name: "Editor"})
	require.NoError(t, err)
	f.T2, err = svc.Resource.CreateTier(ctx, f.S2.ID, model.TierInput{Name: "Admin"})
	require.NoError(t, err)

	_, err = svc.Owner.AddOwner(ctx, f.S1.ID, f.O.ID, f.M.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, email string, managerID *string) *model.User {
	t.Helper()
	name := email[:len(email)-len("@example.com")]
	u, err := f.svc.User.CreateUser(context.Background(), model.CreateUserInput{Email: email, Name: name, ManagerID: managerID}, "")
	require.NoError(t, err)
	return u
}

// grant creates an active grant for user on (I1, tier) as O.
func (f *fixture) grant(t *testing.T, user *model.User, tier *model.AccessTier) *model.AccessGrant {
	t.Helper()
	g, err := f.svc.Grant.CreateGrant(context.Background(), model.CreateGrantInput{
		UserID:           user.ID,
		SystemInstanceID: f.I1.ID,
		AccessTierID:     tier.ID,
	}, f.O.ID)
	require.NoError(t, err)
	return g
}

func (f *fixture) activeGrants(t *testing.T, user *model.User) []model.AccessGrant {
	t.Helper()
	page, err := f.svc.Grant.FindAll(context.Background(), model.GrantFilter{UserID: user.ID, Status: model.GrantActive})
	require.NoError(t, err)
	return page.Data
}

func strptr(s string) *string { return &s }
