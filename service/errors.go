package service

import "errors"

// Validation errors are caller input problems and map to a 4xx-equivalent response
var (
	// ErrInvalidAmount is returned when the revenue, rounded half away from zero
	// to cents, is not positive. 0.004 rounds to 0.00 and is rejected.
	ErrInvalidAmount    = errors.New("revenue amount must be positive after rounding to cents")
	ErrNoInvestors      = errors.New("no investors found for offering and period")
	ErrZeroTotalBalance = errors.New("total investor balance is zero")
	ErrNegativeBalance  = errors.New("investor balance cannot be negative")
	ErrInvalidPeriod    = errors.New("period start must be before period end")
	ErrInvalidOffering  = errors.New("offering id is required")
	ErrDuplicateReport  = errors.New("revenue already reported for offering and period")
)

var (
	// ErrNoBalanceSource is a configuration error; no weight acquisition method is set
	ErrNoBalanceSource = errors.New("no balance source configured")

	ErrDistributionNotFound = errors.New("distribution run not found")
)

// IsValidationError reports whether err is caused by invalid caller input
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrNoInvestors,
		ErrZeroTotalBalance,
		ErrNegativeBalance,
		ErrInvalidPeriod,
		ErrInvalidOffering,
		ErrDuplicateReport,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
