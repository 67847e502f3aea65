package claritycash

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password does not meet minimum requirements")
	ErrNoSession          = errors.New("no active session")
	ErrLinkTokenNotFound  = errors.New("no link token in store")
	ErrCredentialNotFound = errors.New("no linked credential for user")
)
