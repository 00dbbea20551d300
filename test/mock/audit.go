// test/mock/audit.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ucook/accessflow/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

var _ audit.Service = &MockAuditService{}

func (m *MockAuditService) LogAccess(ctx context.Context, entry audit.AuditLog) {
	m.Called(ctx, entry)
}

func (m *MockAuditService) QueryLogs(ctx context.Context, q audit.Query) (*audit.Page, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(*audit.Page)
	return page, args.Error(1)
}

// Actions returns the action of every LogAccess call, in call order.
func (m *MockAuditService) Actions() []string {
	var actions []string
	for _, call := range m.Calls {
		if call.Method != "LogAccess" {
			continue
		}
		actions = append(actions, call.Arguments.Get(1).(audit.AuditLog).Action)
	}
	return actions
}

// NewPermissiveAuditService accepts any LogAccess call.
func NewPermissiveAuditService() *MockAuditService {
	m := &MockAuditService{}
	m.On("LogAccess", mock.Anything, mock.Anything).Return()
	return m
}
