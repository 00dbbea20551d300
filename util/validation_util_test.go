package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
)

func TestValidateImportRow(t *testing.T) {
	v := NewValidationUtil()

	err := v.ValidateImportRow(model.GrantImportRow{UserEmail: "a@b.com", SystemName: "Magento"})
	assert.EqualError(t, err, "missing required field(s): instanceName, tierName")

	err = v.ValidateImportRow(model.GrantImportRow{UserEmail: "nope", SystemName: "S", InstanceName: "I", TierName: "T"})
	assert.ErrorContains(t, err, "invalid email")

	err = v.ValidateImportRow(model.GrantImportRow{UserEmail: "a@b.com", SystemName: "S", InstanceName: "I", TierName: "T", Status: "pending"})
	assert.ErrorContains(t, err, "invalid status")

	assert.NoError(t, v.ValidateImportRow(model.GrantImportRow{UserEmail: "a@b.com", SystemName: "S", InstanceName: "I", TierName: "T", Status: "to_remove"}))
}

func TestValidateCreateRequest(t *testing.T) {
	v := NewValidationUtil()

	err := v.ValidateCreateRequest(model.CreateRequestInput{TargetUserID: "u1"})
	assert.ErrorIs(t, err, af_errors.ErrBadRequest)

	err = v.ValidateCreateRequest(model.CreateRequestInput{TargetUserID: "u1", Items: []model.RequestItemInput{{SystemInstanceID: "i1"}}})
	assert.ErrorContains(t, err, "Item 1")

	assert.NoError(t, v.ValidateCreateRequest(model.CreateRequestInput{TargetUserID: "u1", Items: []model.RequestItemInput{{SystemInstanceID: "i1", AccessTierID: "t1"}}}))
}

func TestCanonicalEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@ucook.co.za", CanonicalEmail("  Jane.Doe@UCOOK.co.za "))
}

func TestRespondWithDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
	}{
		{af_errors.ErrGrantNotFound, http.StatusNotFound},
		{af_errors.ErrActiveGrantExists, http.StatusConflict},
		{af_errors.ErrTierSystemMismatch, http.StatusUnprocessableEntity},
		{af_errors.ErrInvalidCredential, http.StatusUnauthorized},
		{af_errors.ErrNotOwner, http.StatusForbidden},
		{af_errors.InvalidTransition("Grant", "removed", "active"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondWithDomainError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}
