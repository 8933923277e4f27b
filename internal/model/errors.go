package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoPrincipal   = errors.New("no active principal")
	ErrRenewalFailed = errors.New("credential renewal failed")
)

// RenewalError describes a terminal renewal failure. Status is zero when the renewal
// call never produced a response.
type RenewalError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *RenewalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("renew %s session: unexpected status %d", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("renew %s session: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("renew %s session: failed", e.Kind)
}

func (e *RenewalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRenewalFailed}
	}
	return []error{ErrRenewalFailed, e.Err}
}
