package importer

import "errors"

var (
	ErrMatchNotFound = errors.New("pending match not found")
	ErrMatchResolved = errors.New("pending match already resolved")
	ErrInvalidAction = errors.New("action must be confirm or reject")
	ErrInvalidPolicy = errors.New("unknown duplicate policy")
	ErrInvalidKind   = errors.New("unknown import kind")
	ErrEmptyFeed     = errors.New("calendar feed contained no events")
)
