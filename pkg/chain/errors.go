package chain

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds for gas * price + value")
	ErrNonceTooLow       = errors.New("nonce too low")
	ErrNonceTooHigh      = errors.New("nonce too high")
	ErrIntrinsicGas      = errors.New("intrinsic gas too low")
	ErrOutOfGas          = errors.New("out of gas")
	ErrUnknownArtifact   = errors.New("unknown contract artifact")
	ErrNoContract        = errors.New("no contract at address")
	ErrNotPayable        = errors.New("method is not payable")
	ErrNoFallback        = errors.New("contract does not accept ether")
	ErrAddressInUse      = errors.New("contract address already in use")
	ErrUnknownSnapshot   = errors.New("unknown snapshot")
)

// RevertError is returned when a mined transaction or a call fails inside a
// contract. It wraps the contract's error so callers can match it with errors.Is.
type RevertError struct {
	Err error
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Err.Error()
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// ErrorCode follows the JSON-RPC convention for reverted execution.
func (e *RevertError) ErrorCode() int {
	return 3
}

// ErrorData returns the revert reason.
func (e *RevertError) ErrorData() interface{} {
	return e.Err.Error()
}

func revert(err error) error {
	var re *RevertError
	if errors.As(err, &re) {
		return err
	}
	return &RevertError{Err: err}
}
