package pkg

import (
	errorsmod "cosmossdk.io/errors"
)

const (
	// RootCodespace is the codespace for all errors defined in this package
	RootCodespace = "raylp"
)

// NOTE: code 1 is reserved for internal errors.

var (
	ErrInvalidAddress      = errorsmod.Register(RootCodespace, 2, "invalid address")
	ErrExhaustedBumpSearch = errorsmod.Register(RootCodespace, 3, "unable to find a viable program address bump seed")
	ErrAccountNotFound     = errorsmod.Register(RootCodespace, 4, "account not found")
	ErrInvalidAccountData  = errorsmod.Register(RootCodespace, 5, "invalid account data")
	ErrArithmetic          = errorsmod.Register(RootCodespace, 6, "arithmetic error")
	ErrSubmission          = errorsmod.Register(RootCodespace, 7, "transaction submission failed")
	ErrConfig              = errorsmod.Register(RootCodespace, 8, "invalid configuration")
	ErrPendingSubmission   = errorsmod.Register(RootCodespace, 9, "a previous submission is still pending")
	ErrTransactionExpired  = errorsmod.Register(RootCodespace, 10, "transaction expired before confirmation")
	ErrInvalidSeeds        = errorsmod.Register(RootCodespace, 11, "invalid seeds")
)
