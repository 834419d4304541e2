package engine

import "errors"

var (
	// ErrDataIntegrity marks a malformed input snapshot: a section cycle, a
	// dangling parent or section reference, or an unparseable base currency.
	// Generation aborts with no artifact.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrBidsNotOpened marks a generation attempt over submissions whose
	// amounts are still sealed. Generation aborts with no artifact.
	ErrBidsNotOpened = errors.New("bids not opened")
)
