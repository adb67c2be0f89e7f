package types

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Account is the per-principal ledger record. Records spring into existence
// zero-valued on first touch and are never deleted.
type Account struct {
	BalanceASE         *big.Int     `json:"balanceASE"`
	ContributionPoints *uint256.Int `json:"contributionPoints"`
	PrayersOffered     uint64       `json:"prayersOffered"`
	PrayersReceived    uint64       `json:"prayersReceived"`
	CommunityRole      [32]byte     `json:"communityRole"`
}

// Normalize replaces nil pointer fields with zero values so callers can
// mutate the record without nil checks.
func (a *Account) Normalize() *Account {
	if a == nil {
		return &Account{BalanceASE: big.NewInt(0), ContributionPoints: uint256.NewInt(0)}
	}
	if a.BalanceASE == nil {
		a.BalanceASE = big.NewInt(0)
	}
	if a.ContributionPoints == nil {
		a.ContributionPoints = uint256.NewInt(0)
	}
	return a
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return (&Account{}).Normalize()
	}
	clone := &Account{
		BalanceASE:         new(big.Int),
		ContributionPoints: new(uint256.Int),
		PrayersOffered:     a.PrayersOffered,
		PrayersReceived:    a.PrayersReceived,
		CommunityRole:      a.CommunityRole,
	}
	if a.BalanceASE != nil {
		clone.BalanceASE.Set(a.BalanceASE)
	}
	if a.ContributionPoints != nil {
		clone.ContributionPoints.Set(a.ContributionPoints)
	}
	return clone
}
