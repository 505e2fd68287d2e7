package service

import "errors"

var (
	// ErrIndexOutOfRange: ошибка вызывающего кода, состояние не меняется.
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownSide     = errors.New("unknown side")

	ErrInvalidIndicatorReference = errors.New("invalid indicator reference")
	ErrInvalidSignalReference    = errors.New("invalid signal reference")
	ErrUnknownParam              = errors.New("unknown param")
	ErrParamOutOfRange           = errors.New("param out of range")
	ErrUnknownCombinator         = errors.New("unknown combinator")

	ErrEmptyStrategy     = errors.New("empty strategy")
	ErrMalformedDocument = errors.New("malformed document")
)
