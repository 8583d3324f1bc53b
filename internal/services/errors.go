package services

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated means the request carried no valid session.
var ErrUnauthenticated = errors.New("authentication required")

// ErrInvalidSignature means a webhook payload failed provider signature verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrNoBillingCustomer means the user has never completed a checkout.
var ErrNoBillingCustomer = errors.New("no billing customer on file")

// ValidationError is bad caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// LimitKind distinguishes which ceiling rejected a request.
type LimitKind string

const (
	LimitPerRequest LimitKind = "per_request"
	LimitMonthly    LimitKind = "monthly"
)

// EntitlementError is returned when a request would exceed the caller's plan.
type EntitlementError struct {
	Kind      LimitKind
	Limit     int
	Requested int
	Used      int
}

func (e *EntitlementError) Error() string {
	if e.Kind == LimitPerRequest {
		return fmt.Sprintf("Text exceeds the %d word limit for your plan", e.Limit)
	}
	return "Monthly word limit exceeded for your plan"
}

// UpstreamError wraps a failed text-generation call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "text generation failed: " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError collects best-effort write failures after a successful generation.
type PersistenceError struct {
	HistoryErr error
	UsageErr   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: history=%v usage=%v", e.HistoryErr, e.UsageErr)
}
