package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrBankAccountExists   = errors.New("bank account already exists")
	ErrBankAccountInUse    = errors.New("bank account is referenced by active transactions")

	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrAmountInvalid          = errors.New("amount must be positive")
	ErrBalanceInsufficient    = errors.New("insufficient balance")
	ErrInvalidStateTransition = errors.New("transaction status transition not allowed")
	ErrDuplicateReference     = errors.New("transaction reference number already exists")

	ErrSettingNotFound = errors.New("setting not found")
)
