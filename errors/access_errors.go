// errors/access_errors.go
package errors

var (
	ErrGrantNotFound       = NotFound("Access grant not found")
	ErrActiveGrantExists   = Conflict("Active grant already exists")
	ErrRequestNotFound     = NotFound("Access request not found")
	ErrRequestItemNotFound = NotFound("Access request item not found")
	ErrEmptyRequest        = BadRequest("At least one item is required")
	ErrNotManager          = Forbidden("Only the direct manager of the target user can perform this action")
	ErrItemAlreadyLinked   = Conflict("Item has already been provisioned")
	ErrSameSourceAndTarget = BadRequest("Source and target user must differ")
	ErrRejectedByManager   = BadRequest("Cannot provision an item whose request was rejected by the manager")
	ErrCSVTooLarge         = BadRequest("CSV file exceeds the maximum allowed size")
	ErrCSVTooManyRows      = BadRequest("CSV file exceeds the maximum allowed number of rows")
	ErrCSVEmpty            = BadRequest("CSV file contains no data rows")
	ErrConcurrentUpdate    = Conflict("Record was modified concurrently, retry the operation")
)

// InvalidTransition reports a status change outside the allowed table.
func InvalidTransition(entity, from, to string) error {
	return BadRequest("Invalid status transition for %s from '%s' to '%s'", entity, from, to)
}

// RequiredStatus reports that an operation needs a specific source status.
func RequiredStatus(entity, status string) error {
	return BadRequest("%s must be in '%s' status", entity, status)
}
