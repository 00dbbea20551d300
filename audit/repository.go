// audit/repository.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
	"gorm.io/gorm"

	logger "github.com/ucook/accessflow/logging"
)

type Repository interface {
	LogAccess(ctx context.Context, log *AuditLog) error
	QueryLogs(ctx context.Context, q Query) ([]AuditLog, int64, error)
}

// GormRepository stores audit rows next to the workflow tables.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) LogAccess(ctx context.Context, log *AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *GormRepository) QueryLogs(ctx context.Context, q Query) ([]AuditLog, int64, error) {
	q.Normalize()
	tx := r.db.WithContext(ctx).Model(&AuditLog{})
	if q.ActorID != "" {
		tx = tx.Where("actor_id = ?", q.ActorID)
	}
	if q.TargetUserID != "" {
		tx = tx.Where("target_user_id = ?", q.TargetUserID)
	}
	if q.ResourceType != "" {
		tx = tx.Where("resource_type = ?", q.ResourceType)
	}
	if q.ResourceID != "" {
		tx = tx.Where("resource_id = ?", q.ResourceID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	var logs []AuditLog
	err := tx.Order("created_at DESC").Order("id").
		Offset((q.Page - 1) * q.Limit).Limit(q.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query audit logs: %w", err)
	}
	return logs, total, nil
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

func (r *ElasticsearchRepository) LogAccess(ctx context.Context, log *AuditLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: log.ID,
		Body:       strings.NewReader(string(data)),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source AuditLog `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildSearchQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	terms := map[string]string{
		"actorId":      q.ActorID,
		"targetUserId": q.TargetUserID,
		"resourceType": q.ResourceType,
		"resourceId":   q.ResourceID,
		"action":       q.Action,
	}
	for field, value := range terms {
		if value != "" {
			must = append(must, map[string]interface{}{
				"match": map[string]interface{}{field: value},
			})
		}
	}
	if q.From != nil || q.To != nil {
		rng := map[string]interface{}{}
		if q.From != nil {
			rng["gte"] = q.From.Format(time.RFC3339)
		}
		if q.To != nil {
			rng["lte"] = q.To.Format(time.RFC3339)
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"createdAt": rng},
		})
	}

	return map[string]interface{}{
		"from": (q.Page - 1) * q.Limit,
		"size": q.Limit,
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]string{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}
}

func (r *ElasticsearchRepository) QueryLogs(ctx context.Context, q Query) ([]AuditLog, int64, error) {
	q.Normalize()
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(q)); err != nil {
		return nil, 0, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("error searching documents: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	logs := make([]AuditLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, parsed.Hits.Total.Value, nil
}

// MirroredRepository writes to a primary store and copies each entry to
// mirrors. Mirror failures are logged, never returned. Reads hit the primary.
type MirroredRepository struct {
	primary Repository
	mirrors []Repository
}

func NewMirroredRepository(primary Repository, mirrors ...Repository) *MirroredRepository {
	return &MirroredRepository{primary: primary, mirrors: mirrors}
}

func (r *MirroredRepository) LogAccess(ctx context.Context, log *AuditLog) error {
	if err := r.primary.LogAccess(ctx, log); err != nil {
		return err
	}
	for _, mirror := range r.mirrors {
		if err := mirror.LogAccess(ctx, log); err != nil {
			logger.Warn("Failed to mirror audit log",
				zap.String("auditLogID", log.ID),
				zap.Error(err))
		}
	}
	return nil
}

func (r *MirroredRepository) QueryLogs(ctx context.Context, q Query) ([]AuditLog, int64, error) {
	return r.primary.QueryLogs(ctx, q)
}
