package cli

import "errors"

// Common CLI errors. Commands return them to get a non-zero exit status
// after their report is printed.
var (
	ErrNoMatch            = errors.New("one or more requests matched no stub")
	ErrRequestsDiffer     = errors.New("one or more requests do not match the stub")
	ErrVerificationFailed = errors.New("verification failed")
	ErrStubNotFound       = errors.New("stub not found")
	ErrNoRequests         = errors.New("no requests given: use --requests or --url")
)
