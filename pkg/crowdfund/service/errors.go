package service

import (
	"context"
	"errors"

	apperrors "github.com/chainsafe/red-crowdfund/pkg/app/errors"
	"github.com/chainsafe/red-crowdfund/pkg/crowdfund"
)

// toServiceError maps contract and chain errors onto API error categories.
// The contract error text is returned to the caller.
func toServiceError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	category := apperrors.CategoryGeneralError
	switch {
	case errors.Is(err, crowdfund.ErrUnauthorized):
		category = apperrors.CategoryForbidden
	case errors.Is(err, crowdfund.ErrInvalidState),
		errors.Is(err, crowdfund.ErrPhaseClosed),
		errors.Is(err, crowdfund.ErrTooEarly),
		errors.Is(err, crowdfund.ErrPoolExhausted):
		category = apperrors.CategoryDataConflict
	case errors.Is(err, crowdfund.ErrLockedBalance):
		category = apperrors.CategoryLocked
	case errors.Is(err, crowdfund.ErrInvalidArgument),
		errors.Is(err, crowdfund.ErrNotWhitelisted),
		errors.Is(err, crowdfund.ErrInsufficientBalance),
		errors.Is(err, crowdfund.ErrInsufficientAllowance):
		category = apperrors.CategoryDataError
	case errors.Is(err, context.DeadlineExceeded):
		category = apperrors.CategoryConnectionTimeout
	}

	if category == apperrors.CategoryGeneralError {
		return apperrors.GeneralError(err)
	}
	return apperrors.New(category, err)
}
