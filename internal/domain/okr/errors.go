package okr

import "errors"

var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicateAssignee = errors.New("member already assigned")
)
