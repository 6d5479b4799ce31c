package service

import "errors"

// Business-outcome errors. Callers treat these as expected results
// (skip, reject), not as faults.
var (
	ErrDonationNotFound = errors.New("donation not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrPledgeNotFound   = errors.New("recurring donation not found")
	ErrReceiptNotFound  = errors.New("receipt not found")

	// ErrAlreadyCharged is the idempotency guard: a donation that already
	// carries a processor transaction id is never charged again.
	ErrAlreadyCharged = errors.New("donation already charged")

	ErrIneligibleForRefund  = errors.New("donation is not eligible for a refund")
	ErrIneligibleForReceipt = errors.New("donation is not eligible for a receipt")

	// ErrVerificationFailed means an inbound callback failed signature
	// verification. No state is mutated; the request is rejected.
	ErrVerificationFailed = errors.New("callback verification failed")
)
