package services

import "errors"

var (
	// ErrAccountNotFound: the email resolves to no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoPendingCode: registration attempted without a prior code issuance.
	ErrNoPendingCode = errors.New("no pending code for account")

	// ErrCodeInvalidOrExpired: supplied code does not match or its expiry passed.
	ErrCodeInvalidOrExpired = errors.New("code invalid or expired")

	// ErrUnauthorized: email/credential pair does not match a registered account.
	ErrUnauthorized = errors.New("invalid credentials")
)
