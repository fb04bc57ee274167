package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidID         = errors.New("invalid record id")
	ErrInvalidCollection = errors.New("invalid collection")
	ErrInvalidOp         = errors.New("invalid change type")
	ErrEmptyPayload      = errors.New("payload is required")
	ErrUnexpectedPayload = errors.New("delete must not carry a payload")
	ErrInvalidAmount     = errors.New("amount must be a decimal number")
	ErrInvalidDate       = errors.New("date must be an RFC 3339 timestamp")
	ErrInvalidTxType     = errors.New("transaction type must be income or expense")
	ErrEmptyChanges      = errors.New("changes list cannot be empty")
	ErrLengthMismatch    = errors.New("length does not match changes")
	ErrEmptyLogin        = errors.New("login is required")
	ErrEmptyPassword     = errors.New("password is required")
)
