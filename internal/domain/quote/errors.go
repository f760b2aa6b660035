package quote

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrIndexOutOfRange = errors.New("item index out of range")
	ErrNothingSelected = errors.New("no item selected")
	ErrCorruptFile     = errors.New("corrupt quote file")
	ErrIO              = errors.New("quote file io error")
)
