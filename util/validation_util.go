// util/validation_util.go
package util

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	af_errors "github.com/ucook/accessflow/errors"
	"github.com/ucook/accessflow/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

// CanonicalEmail is the stored form of an email address.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *ValidationUtil) ValidateEmail(email string) error {
	if email == "" {
		return af_errors.BadRequest("Email is required")
	}
	if err := v.validate.Var(email, "required,email"); err != nil {
		return af_errors.BadRequest("Invalid email address: %s", email)
	}
	return nil
}

func (v *ValidationUtil) ValidateCreateUser(input model.CreateUserInput) error {
	if err := v.ValidateEmail(CanonicalEmail(input.Email)); err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return af_errors.BadRequest("User name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateSystem(input model.SystemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return af_errors.BadRequest("System name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateInstance(input model.InstanceInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return af_errors.BadRequest("Instance name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateTier(input model.TierInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return af_errors.BadRequest("Access tier name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateCreateRequest(input model.CreateRequestInput) error {
	if input.TargetUserID == "" {
		return af_errors.BadRequest("Target user is required")
	}
	if len(input.Items) == 0 {
		return af_errors.ErrEmptyRequest
	}
	for i, item := range input.Items {
		if err := v.validate.Struct(itemRule{item.SystemInstanceID, item.AccessTierID}); err != nil {
			return af_errors.BadRequest("Item %d: systemInstanceId and accessTierId are required", i+1)
		}
	}
	return nil
}

type itemRule struct {
	SystemInstanceID string `validate:"required"`
	AccessTierID     string `validate:"required"`
}

func (v *ValidationUtil) ValidateGrantStatus(status model.GrantStatus) error {
	if !status.Valid() {
		return af_errors.BadRequest("Invalid grant status '%s'", status)
	}
	return nil
}

// ValidateImportRow checks the required CSV columns of one row.
func (v *ValidationUtil) ValidateImportRow(row model.GrantImportRow) error {
	var missing []string
	if row.UserEmail == "" {
		missing = append(missing, "userEmail")
	}
	if row.SystemName == "" {
		missing = append(missing, "systemName")
	}
	if row.InstanceName == "" {
		missing = append(missing, "instanceName")
	}
	if row.TierName == "" {
		missing = append(missing, "tierName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	if err := v.validate.Var(row.UserEmail, "email"); err != nil {
		return fmt.Errorf("invalid email address: %s", row.UserEmail)
	}
	if row.Status != "" && !model.GrantStatus(row.Status).Valid() {
		return fmt.Errorf("invalid status '%s'", row.Status)
	}
	return nil
}
