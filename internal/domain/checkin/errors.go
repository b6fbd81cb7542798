package checkin

import "errors"

var (
	ErrNotFound          = errors.New("checkin not found")
	ErrAlreadySubmitted  = errors.New("checkin already submitted")
	ErrAllocationCeiling = errors.New("total allocation exceeds ceiling")
	ErrNoSentinelTarget  = errors.New("sentinel key result for ad-hoc work not found")
	ErrAmbiguousTarget   = errors.New("item must target exactly one of initiative or key result")
)
