package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionGrant(t *testing.T) {
	cases := []struct {
		from, to GrantStatus
		ok       bool
	}{
		{GrantActive, GrantToRemove, true},
		{GrantActive, GrantRemoved, true},
		{GrantToRemove, GrantActive, true},
		{GrantToRemove, GrantRemoved, true},
		{GrantRemoved, GrantActive, false},
		{GrantRemoved, GrantToRemove, false},
		{GrantActive, GrantActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransitionGrant(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionRequest(t *testing.T) {
	assert.True(t, CanTransitionRequest(RequestRequested, RequestApproved))
	assert.True(t, CanTransitionRequest(RequestRequested, RequestRejected))
	assert.False(t, CanTransitionRequest(RequestApproved, RequestRejected))
	assert.False(t, CanTransitionRequest(RequestRejected, RequestApproved))
	assert.False(t, CanTransitionRequest(RequestApproved, RequestRequested))
}

func TestDeriveRequestStatus(t *testing.T) {
	items := func(statuses ...RequestStatus) []AccessRequestItem {
		out := make([]AccessRequestItem, len(statuses))
		for i, s := range statuses {
			out[i].Status = s
		}
		return out
	}

	assert.Equal(t, RequestRequested, DeriveRequestStatus(nil))
	assert.Equal(t, RequestRequested, DeriveRequestStatus(items(RequestRequested, RequestApproved)))
	assert.Equal(t, RequestApproved, DeriveRequestStatus(items(RequestApproved, RequestApproved)))
	assert.Equal(t, RequestRejected, DeriveRequestStatus(items(RequestApproved, RequestRejected)))
	assert.Equal(t, RequestRejected, DeriveRequestStatus(items(RequestRequested, RequestRejected)))
}

func TestGrantFilterNormalize(t *testing.T) {
	f := GrantFilter{Limit: 500, SortBy: "bogus", SortOrder: "ASC"}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageLimit, f.Limit)
	assert.Equal(t, SortByGrantedAt, f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)

	f = GrantFilter{}
	f.Normalize()
	assert.Equal(t, DefaultPageLimit, f.Limit)
	assert.Equal(t, "desc", f.SortOrder)
}

func TestUserHelpers(t *testing.T) {
	manager := "m-1"
	u := User{ManagerID: &manager, Roles: []UserRole{{Role: RoleAdmin}}}
	assert.True(t, u.IsManagedBy("m-1"))
	assert.False(t, u.IsManagedBy("m-2"))
	assert.True(t, u.HasRole(RoleAdmin))
	assert.False(t, (&User{}).IsManagedBy("m-1"))
}
