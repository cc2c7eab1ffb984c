package storage

type StorageError string

func (e StorageError) Error() string {
	return string(e)
}

const (
	ErrTypeMismatch          = StorageError("type mismatch")
	ErrUnsupportedConversion = StorageError("unsupported conversion")
	ErrDivisionByZero        = StorageError("division by zero")
	ErrUnknownType           = StorageError("unknown type")
	ErrWrongValueFormat      = StorageError("wrong value format")
	ErrDuplicateField        = StorageError("duplicate field")
)
