package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucook/accessflow/controller"
	"github.com/ucook/accessflow/metrics"
	"github.com/ucook/accessflow/middleware"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/router"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/test/mock"
	"github.com/ucook/accessflow/test/testdb"
)

const (
	secret = "router-secret"
	issuer = "accessflow"
)

type stack struct {
	engine *gin.Engine
	svc    *service.Services
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := service.InitializeServices(testdb.New(t), service.Options{
		AuditService: mock.NewPermissiveAuditService(),
		Notifier:     &mock.RecordingNotifier{},
		BaseURL:      "http://access.test",
		CSVLimits:    service.CSVLimits{MaxBytes: 5 << 20, MaxRows: 1000},
	})
	require.NoError(t, err)

	engine := router.SetupRouter(controller.InitializeControllers(svc), router.Options{
		Users:   svc.User,
		Auth:    middleware.AuthOptions{Secret: secret, Issuer: issuer},
		Metrics: metrics.NewRegistry(),
	})
	return &stack{engine: engine, svc: svc}
}

func (s *stack) user(t *testing.T, email string, managerID *string) *model.User {
	t.Helper()
	u, err := s.svc.User.CreateUser(context.Background(), model.CreateUserInput{Email: email, Name: email, ManagerID: managerID}, "")
	require.NoError(t, err)
	return u
}

func (s *stack) call(t *testing.T, email, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if email != "" {
		token, err := middleware.IssueToken(secret, issuer, email, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	s := newStack(t)

	w := s.call(t, "", "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.call(t, "", "GET", "/api/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.call(t, "", "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `accessflow_http_requests_total{code="401",method="GET",route="/api/v1/me"} 1`)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := newStack(t)
	admin := s.user(t, "ada@example.com", nil)
	s.user(t, "grace@example.com", nil)
	require.NoError(t, s.svc.User.GrantRole(context.Background(), admin.ID, model.RoleAdmin))

	body := `{"name":"Magento"}`
	w := s.call(t, "grace@example.com", "POST", "/api/v1/systems", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.call(t, "ada@example.com", "POST", "/api/v1/systems", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

// TestRequestLifecycle drives a request from a non-manager through owner
// approval and provisioning over HTTP.
func TestRequestLifecycle(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	manager := s.user(t, "mia@example.com", nil)
	employee := s.user(t, "eli@example.com", &manager.ID)
	s.user(t, "noa@example.com", nil)
	owner := s.user(t, "oli@example.com", nil)

	system, err := s.svc.Resource.CreateSystem(ctx, model.SystemInput{Name: "Magento"})
	require.NoError(t, err)
	instance, err := s.svc.Resource.CreateInstance(ctx, system.ID, model.InstanceInput{Name: "UCOOK Production"})
	require.NoError(t, err)
	tier, err := s.svc.Resource.CreateTier(ctx, system.ID, model.TierInput{Name: "Viewer"})
	require.NoError(t, err)
	_, err = s.svc.Owner.AddOwner(ctx, system.ID, owner.ID, manager.ID)
	require.NoError(t, err)

	body := `{"targetUserId":"` + employee.ID + `","items":[{"systemInstanceId":"` + instance.ID + `","accessTierId":"` + tier.ID + `"}]}`
	w := s.call(t, "noa@example.com", "POST", "/api/v1/requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var request model.AccessRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	assert.Equal(t, model.RequestRequested, request.Status)
	require.Len(t, request.Items, 1)
	itemID := request.Items[0].ID

	w = s.call(t, "noa@example.com", "POST", "/api/v1/request-items/"+itemID+"/approve", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.call(t, "oli@example.com", "POST", "/api/v1/request-items/"+itemID+"/approve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.call(t, "oli@example.com", "GET", "/api/v1/request-items/pending-provisioning", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), itemID)

	w = s.call(t, "oli@example.com", "POST", "/api/v1/request-items/"+itemID+"/provision", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var item model.AccessRequestItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	require.NotNil(t, item.AccessGrantID)

	w = s.call(t, "oli@example.com", "POST", "/api/v1/request-items/"+itemID+"/provision", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.call(t, "eli@example.com", "GET", "/api/v1/grants?userId="+employee.ID+"&status=active", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page model.PageResult[model.AccessGrant]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, *item.AccessGrantID, page.Data[0].ID)

	// the owner revokes the active grant without the admin status route
	grantPath := "/api/v1/grants/" + *item.AccessGrantID
	w = s.call(t, "oli@example.com", "PATCH", grantPath+"/status", `{"status":"removed"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.call(t, "noa@example.com", "POST", grantPath+"/mark-removed", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.call(t, "oli@example.com", "POST", grantPath+"/mark-removed", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var grant model.AccessGrant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))
	assert.Equal(t, model.GrantRemoved, grant.Status)
	assert.NotNil(t, grant.RemovedAt)
}
