package bank

import "errors"

var (
	// ErrEmptyUnitID is returned when a payment has no unit id.
	ErrEmptyUnitID = errors.New("bank: empty unit id")
	// ErrNegativeAmount is returned when a payment amount is below zero.
	ErrNegativeAmount = errors.New("bank: negative amount")
	// ErrNonIntegerAmount is returned when an amount has a fractional part.
	ErrNonIntegerAmount = errors.New("bank: amount is not an integer")
	// ErrInvalidAmount is returned when a value cannot be read as an amount.
	ErrInvalidAmount = errors.New("bank: invalid amount")
	// ErrEmptyDate is returned when a payment has no date.
	ErrEmptyDate = errors.New("bank: empty date")
)
