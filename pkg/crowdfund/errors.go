package crowdfund

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidState          = errors.New("invalid state")
	ErrTooEarly              = errors.New("too early")
	ErrNotWhitelisted        = errors.New("not whitelisted")
	ErrPoolExhausted         = errors.New("pool exhausted")
	ErrLockedBalance         = errors.New("locked balance")
	ErrPhaseClosed           = errors.New("sale is not active")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// ErrTransfersLocked is returned for token transfers before the crowdfund closes.
var ErrTransfersLocked = fmt.Errorf("transfers are locked until the crowdfund closes: %w", ErrLockedBalance)
