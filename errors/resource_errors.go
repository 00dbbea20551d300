// errors/resource_errors.go
package errors

var (
	ErrSystemNotFound     = NotFound("System not found")
	ErrSystemConflict     = Conflict("System with this name already exists")
	ErrInstanceNotFound   = NotFound("System instance not found")
	ErrInstanceConflict   = Conflict("Instance with this name already exists for the system")
	ErrTierNotFound       = NotFound("Access tier not found")
	ErrTierConflict       = Conflict("Access tier with this name already exists for the system")
	ErrTierSystemMismatch = Unprocessable("Access tier does not belong to the system of the instance")

	ErrOwnerConflict = Conflict("User is already an owner of this system")
	ErrOwnerNotFound = NotFound("System owner not found")
	ErrNotOwner      = Forbidden("Only system owners can perform this action")
)
