// errors/user_errors.go
package errors

var (
	ErrUserNotFound      = NotFound("User not found")
	ErrRequesterNotFound = NotFound("Requester not found")
	ErrManagerNotFound   = NotFound("Manager not found")
	ErrUserConflict      = Conflict("User with this email already exists")
	ErrSelfManager       = BadRequest("A user cannot be their own manager")
	ErrManagerCycle      = BadRequest("Manager assignment would create a cycle")
	ErrMissingCredential = Unauthorized("Missing bearer token")
	ErrInvalidCredential = Unauthorized("Invalid or expired token")
	ErrRoleRequired      = Forbidden("Insufficient role")
)
