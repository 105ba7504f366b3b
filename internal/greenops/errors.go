package greenops

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrInvalidUnit is returned for an unrecognized energy unit.
	ErrInvalidUnit = constError("invalid energy unit")

	// ErrNegativeValue is returned for negative energy or carbon amounts.
	ErrNegativeValue = constError("negative value")

	// ErrCalculationOverflow is returned for non-finite inputs or results.
	ErrCalculationOverflow = constError("calculation overflow")
)
