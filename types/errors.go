/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import "errors"

var (
	// ErrUserMismatch signals an operation attempted for a user identity other
	// than the authenticated one. Unlike validation or parse failures this is
	// never silently degraded; it is security-relevant and always propagated.
	ErrUserMismatch = errors.New("user identity does not match authenticated session")

	// ErrEmptyDescription rejects task text that is blank after trimming.
	ErrEmptyDescription = errors.New("task description cannot be empty")

	// ErrNoUserID rejects store operations without an owning identity.
	ErrNoUserID = errors.New("no user ID provided")
)
