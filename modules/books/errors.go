package books

import "errors"

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotOwner      = errors.New("not the owner")
)
