package usecase

import (
	apperrors "chatwire/pkg/errors"
)

// storeErr wraps an infrastructure failure from the message store or
// directory so it surfaces as STORE_UNAVAILABLE at the request boundary.
// Coded application errors pass through untouched.
func storeErr(err error) error {
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.ErrStoreRead(err)
}

func storeWriteErr(err error) error {
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.ErrStoreWrite(err)
}
