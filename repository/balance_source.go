package repository

import (
	"fmt"

	"revshare/database"
	"revshare/service"
)

// Balance source kinds accepted by NewBalanceSource
const (
	BalanceSourceSnapshot    = "snapshot"
	BalanceSourceInvestments = "investments"
)

// NewBalanceSource returns the weight acquisition method named by kind
func NewBalanceSource(kind string, db *database.DB) (service.BalanceSource, error) {
	switch kind {
	case BalanceSourceSnapshot:
		return NewBalanceSnapshotRepository(db), nil
	case BalanceSourceInvestments:
		return NewInvestmentBalanceSource(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", service.ErrNoBalanceSource, kind)
	}
}
