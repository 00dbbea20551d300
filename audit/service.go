// audit/service.go
package audit

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/ucook/accessflow/logging"
)

type Service interface {
	// LogAccess records entry. Failures are logged and swallowed.
	LogAccess(ctx context.Context, entry AuditLog)
	QueryLogs(ctx context.Context, q Query) (*Page, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogAccess(ctx context.Context, entry AuditLog) {
	if err := s.repo.LogAccess(ctx, &entry); err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", entry.Action),
			zap.String("resourceType", entry.ResourceType),
			zap.String("resourceID", entry.ResourceID),
			zap.Error(err))
	}
}

func (s *service) QueryLogs(ctx context.Context, q Query) (*Page, error) {
	q.Normalize()
	logs, total, err := s.repo.QueryLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Page{Data: logs, Total: total, Page: q.Page, Limit: q.Limit}, nil
}
