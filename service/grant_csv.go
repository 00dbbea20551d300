// service/grant_csv.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/audit"
	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
	helper_util "github.com/ucook/accessflow/util/helper"
)

const (
	colUserEmail    = "userEmail"
	colSystemName   = "systemName"
	colInstanceName = "instanceName"
	colTierName     = "tierName"
	colStatus       = "status"
	colGrantedAt    = "grantedAt"
)

// TemplateColumns is the fixed header of the import template.
var TemplateColumns = []string{colUserEmail, colSystemName, colInstanceName, colTierName, colStatus, colGrantedAt}

var requiredColumns = []string{colUserEmail, colSystemName, colInstanceName, colTierName}

// headerAliases maps a normalised header (lower-case, alphanumerics only)
// to its canonical column.
var headerAliases = map[string]string{
	"useremail":      colUserEmail,
	"email":          colUserEmail,
	"user":           colUserEmail,
	"systemname":     colSystemName,
	"system":         colSystemName,
	"instancename":   colInstanceName,
	"instance":       colInstanceName,
	"systeminstance": colInstanceName,
	"tiername":       colTierName,
	"tier":           colTierName,
	"accesstier":     colTierName,
	"status":         colStatus,
	"grantedat":      colGrantedAt,
	"granted":        colGrantedAt,
	"granteddate":    colGrantedAt,
}

// NormalizeHeader folds case and drops separators, so "User Email",
// "user_email" and "USER-EMAIL" all resolve to userEmail.
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.TrimPrefix(h, "\ufeff") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if canonical, ok := headerAliases[b.String()]; ok {
		return canonical
	}
	return ""
}

// ParseGrantCSV reads rows keyed by canonical column. It rejects input over
// limits outright and never truncates.
func ParseGrantCSV(r io.Reader, limits CSVLimits) ([]model.GrantImportRow, error) {
	data, err := io.ReadAll(io.LimitReader(r, limits.MaxBytes+1))
	if err != nil {
		return nil, af_errors.BadRequest("Failed to read CSV: %v", err)
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, af_errors.ErrCSVTooLarge
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, af_errors.ErrCSVEmpty
	}
	if err != nil {
		return nil, af_errors.BadRequest("Malformed CSV header: %v", err)
	}

	index := map[string]int{}
	for i, h := range header {
		if col := NormalizeHeader(h); col != "" {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, af_errors.BadRequest("CSV header is missing required column(s): %s", strings.Join(missing, ", "))
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []model.GrantImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, af_errors.BadRequest("Malformed CSV: %v", err)
		}
		if isBlankRecord(record) {
			continue
		}
		if len(rows) >= limits.MaxRows {
			return nil, af_errors.ErrCSVTooManyRows
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, model.GrantImportRow{
			Line:         line,
			UserEmail:    util.CanonicalEmail(field(record, colUserEmail)),
			SystemName:   field(record, colSystemName),
			InstanceName: field(record, colInstanceName),
			TierName:     field(record, colTierName),
			Status:       strings.ToLower(field(record, colStatus)),
			GrantedAt:    field(record, colGrantedAt),
		})
	}
	if len(rows) == 0 {
		return nil, af_errors.ErrCSVEmpty
	}
	return rows, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// resolvedRow is a row whose catalog references resolved. The user may still
// be missing; it is provisioned when the row is created.
type resolvedRow struct {
	line  int
	email string
	input model.CreateGrantInput
}

type catalogLookup struct {
	s       *GrantService
	systems map[string]*model.System
}

func (l *catalogLookup) resolve(ctx context.Context, row model.GrantImportRow) (*resolvedRow, error) {
	if err := l.s.validationUtil.ValidateImportRow(row); err != nil {
		return nil, err
	}

	system, ok := l.systems[row.SystemName]
	if !ok {
		var err error
		if system, err = l.s.resourceDAO.GetSystemByName(ctx, row.SystemName); err != nil {
			return nil, lookupError(err, row.SystemName)
		}
		l.systems[row.SystemName] = system
	}
	instance, err := l.s.resourceDAO.GetInstanceByName(ctx, system.ID, row.InstanceName)
	if err != nil {
		return nil, lookupError(err, row.InstanceName)
	}
	tier, err := l.s.resourceDAO.GetTierByName(ctx, system.ID, row.TierName)
	if err != nil {
		return nil, lookupError(err, row.TierName)
	}
	grantedAt, err := helper_util.ParseNullableTime(row.GrantedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid grantedAt: %s", row.GrantedAt)
	}

	resolved := &resolvedRow{
		line:  row.Line,
		email: row.UserEmail,
		input: model.CreateGrantInput{
			SystemInstanceID: instance.ID,
			AccessTierID:     tier.ID,
			Status:           model.GrantStatus(row.Status),
			GrantedAt:        grantedAt,
		},
	}
	if user, err := l.s.userDAO.GetUserByEmail(ctx, row.UserEmail); err == nil {
		resolved.input.UserID = user.ID
	} else if !af_errors.IsNotFound(err) {
		return nil, err
	}
	return resolved, nil
}

func lookupError(err error, name string) error {
	if af_errors.IsNotFound(err) {
		return fmt.Errorf("%s: %s", af_errors.Message(err), name)
	}
	return err
}

// ImportCSV reconciles a CSV file into the ledger. Rows that fail
// validation or resolution never reach creation and are appended to the
// report as failed, so the report always covers every data row.
func (s *GrantService) ImportCSV(ctx context.Context, r io.Reader, actorID string) (*model.BulkGrantReport, error) {
	rows, err := ParseGrantCSV(r, s.csvLimits)
	if err != nil {
		return nil, err
	}

	lookup := &catalogLookup{s: s, systems: map[string]*model.System{}}
	var valid []*resolvedRow
	var invalid []model.BulkGrantRowResult
	for _, row := range rows {
		resolved, err := lookup.resolve(ctx, row)
		if err != nil {
			invalid = append(invalid, model.BulkGrantRowResult{Row: row.Line, Outcome: model.OutcomeFailed, Error: af_errors.Message(err)})
			continue
		}
		valid = append(valid, resolved)
	}

	report := &model.BulkGrantReport{Results: []model.BulkGrantRowResult{}}
	for _, row := range valid {
		if row.input.UserID == "" {
			user, _, err := s.userService.EnsureUser(ctx, row.email)
			if err != nil {
				report.Add(model.BulkGrantRowResult{Row: row.line, Outcome: model.OutcomeFailed, Error: af_errors.Message(err)})
				continue
			}
			row.input.UserID = user.ID
		}
		row.input.GrantedByID = &actorID
		report.Add(s.createRow(ctx, row.line, row.input, actorID))
	}
	for _, result := range invalid {
		report.Add(result)
	}

	s.auditService.LogAccess(ctx, audit.NewEntry(audit.ActionCSVImported, actorID, audit.ResourceGrant, "",
		map[string]interface{}{
			"total":   report.Total,
			"success": report.Success,
			"skipped": report.Skipped,
			"failed":  report.Failed,
		}))
	s.eventBus.Publish(ctx, util.EventGrantsImported, *report)
	logger.Info("CSV grant import finished",
		zap.String("actorID", actorID),
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// CSVTemplate returns the import header followed by one example row.
func (s *GrantService) CSVTemplate() ([]byte, error) {
	return GrantCSVTemplate()
}

func GrantCSVTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TemplateColumns); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"jane.doe@example.com", "Magento", "UCOOK Production", "Viewer", "active", "2024-01-31"}); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
