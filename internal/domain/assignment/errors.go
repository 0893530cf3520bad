package assignment

import "errors"

var (
	ErrRequestNotFound  = errors.New("feedback request not found")
	ErrInvalidStatus    = errors.New("unknown request status")
	ErrStatusTransition = errors.New("request status transition not allowed")
	ErrNotRequestOwner  = errors.New("request does not belong to caller")
	ErrAlreadyResponded = errors.New("request already has a response")
)
