package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/service"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"userEmail":      "userEmail",
		"User Email":     "userEmail",
		"user_email":     "userEmail",
		"USER-EMAIL":     "userEmail",
		"\ufeffEmail":    "userEmail",
		"System Name":    "systemName",
		"instance":       "instanceName",
		"Access Tier":    "tierName",
		" Granted At ":   "grantedAt",
		"favourite food": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, service.NormalizeHeader(in), in)
	}
}

func TestParseGrantCSV(t *testing.T) {
	limits := service.CSVLimits{MaxBytes: 5 << 20, MaxRows: 3}

	t.Run("rows carry their file line", func(t *testing.T) {
		rows, err := service.ParseGrantCSV(strings.NewReader(
			"User Email,System,Instance,Tier,Status\n"+
				"Jane.Doe@Example.com,Magento,UCOOK Production,Viewer,ACTIVE\n"+
				",,,,\n"+
				"bob@example.com,Magento,UCOOK Production,Editor,\n"), limits)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "jane.doe@example.com", rows[0].UserEmail)
		assert.Equal(t, "active", rows[0].Status)
		assert.Equal(t, 4, rows[1].Line)
	})

	t.Run("missing required column", func(t *testing.T) {
		_, err := service.ParseGrantCSV(strings.NewReader("email,system,tier\na@b.c,Magento,Viewer\n"), limits)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "instanceName")
	})

	t.Run("too many rows is rejected whole", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("email,system,instance,tier\n")
		for i := 0; i < 4; i++ {
			fmt.Fprintf(&b, "u%d@example.com,Magento,UCOOK Production,Viewer\n", i)
		}
		_, err := service.ParseGrantCSV(strings.NewReader(b.String()), limits)
		assert.ErrorIs(t, err, af_errors.ErrCSVTooManyRows)
	})

	t.Run("too large is rejected whole", func(t *testing.T) {
		small := service.CSVLimits{MaxBytes: 32, MaxRows: 1000}
		_, err := service.ParseGrantCSV(strings.NewReader("email,system,instance,tier\n"+strings.Repeat("x", 64)), small)
		assert.ErrorIs(t, err, af_errors.ErrCSVTooLarge)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := service.ParseGrantCSV(strings.NewReader("email,system,instance,tier\n"), limits)
		assert.ErrorIs(t, err, af_errors.ErrCSVEmpty)
	})
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown system fails only its row", func(t *testing.T) {
		f := newFixture(t)
		csv := "userEmail,systemName,instanceName,tierName,status,grantedAt\n" +
			"eli.employee@example.com,Magento,UCOOK Production,Viewer,active,2024-01-31\n" +
			"noa.colleague@example.com,Magento,UCOOK Production,Editor,,\n" +
			"noa.colleague@example.com,Salesforce,Prod,Viewer,,\n"

		report, err := f.svc.Grant.ImportCSV(ctx, strings.NewReader(csv), f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Success)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Results, 3)

		failed := report.Results[2]
		assert.Equal(t, 4, failed.Row)
		assert.False(t, failed.Success)
		assert.Contains(t, failed.Error, "System not found")

		grants := f.activeGrants(t, f.E)
		require.Len(t, grants, 1)
		assert.Equal(t, 2024, grants[0].GrantedAt.Year())
	})

	t.Run("existing active grant is skipped", func(t *testing.T) {
		f := newFixture(t)
		f.grant(t, f.E, f.T1)
		report, err := f.svc.Grant.ImportCSV(ctx, strings.NewReader(
			"email,system,instance,tier\neli.employee@example.com,Magento,UCOOK Production,Viewer\n"), f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, model.OutcomeSkipped, report.Results[0].Outcome)
	})

	t.Run("unknown user is provisioned", func(t *testing.T) {
		f := newFixture(t)
		report, err := f.svc.Grant.ImportCSV(ctx, strings.NewReader(
			"email,system,instance,tier\nmary-jane.o_neil@example.com,Magento,UCOOK Production,Viewer\n"), f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Success)

		user, err := f.svc.User.GetUserByEmail(ctx, "mary-jane.o_neil@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Mary Jane O Neil", user.Name)
		assert.Len(t, f.activeGrants(t, user), 1)
	})

	t.Run("invalid rows never reach creation", func(t *testing.T) {
		f := newFixture(t)
		report, err := f.svc.Grant.ImportCSV(ctx, strings.NewReader(
			"email,system,instance,tier,status\n"+
				"not-an-email,Magento,UCOOK Production,Viewer,\n"+
				"eli.employee@example.com,Magento,Staging,Viewer,\n"+
				"eli.employee@example.com,Magento,UCOOK Production,Owner,\n"+
				"eli.employee@example.com,Magento,UCOOK Production,Viewer,paused\n"), f.O.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, report.Total)
		assert.Equal(t, 4, report.Failed)
		assert.Contains(t, report.Results[1].Error, "System instance not found")
		assert.Contains(t, report.Results[2].Error, "Access tier not found")
		assert.Empty(t, f.activeGrants(t, f.E))

		_, err = f.svc.User.GetUserByEmail(ctx, "not-an-email")
		assert.ErrorIs(t, err, af_errors.ErrNotFound)
	})
}

func TestBulkCreateGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rows := []model.BulkGrantInput{
		{UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID},
		{UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T2.ID},
		{UserID: f.E.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID},
		{UserID: f.N.ID, SystemInstanceID: f.I1.ID, AccessTierID: f.T1.ID},
	}
	report := f.svc.Grant.BulkCreate(ctx, rows, f.O.ID)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Results, 4)
	assert.Equal(t, model.OutcomeFailed, report.Results[1].Outcome)
	assert.Equal(t, model.OutcomeSkipped, report.Results[2].Outcome)
	assert.Equal(t, 4, report.Results[3].Row)
}

func TestCSVTemplate(t *testing.T) {
	data, err := service.GrantCSVTemplate()
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "userEmail,systemName,instanceName,tierName,status,grantedAt", header)
}
