package community

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ModuleName is the pause-toggle key shared by every community operation.
const ModuleName = "community"

// MaxBatchRecipients bounds the work a single batch offering may perform.
const MaxBatchRecipients = 20

// Role names consulted through the ledger's authorization table.
const (
	RoleAdmin     = "admin"
	RoleTreasury  = "treasury"
	RoleOrganizer = "organizer"
)

// Contribution tier thresholds, compared against the raw point accumulator.
var (
	thresholdElder       = uint256.NewInt(10000)
	thresholdHealer      = uint256.NewInt(5000)
	thresholdFacilitator = uint256.NewInt(1000)
	thresholdCircle      = uint256.NewInt(100)
)

// Contribution tier labels, from highest to lowest.
const (
	LevelElder       = "Elder/Ancestral Wisdom Keeper"
	LevelHealer      = "Community Healer"
	LevelFacilitator = "Ritual Facilitator"
	LevelCircle      = "Circle Holder"
	LevelMember      = "Community Member"
)

// GatheringMinPoints is the contribution floor for organizing a gathering,
// the Circle Holder threshold.
var GatheringMinPoints = thresholdCircle

// maxContributionPoints caps the accumulator at its 128-bit storage width.
// Accrual saturates here instead of wrapping.
var maxContributionPoints = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 128),
	uint256.NewInt(1),
)

// ContributionLevel maps a point total onto its tier label. Evaluated top
// down, first match wins.
func ContributionLevel(points *uint256.Int) string {
	if points == nil {
		return LevelMember
	}
	switch {
	case points.Cmp(thresholdElder) >= 0:
		return LevelElder
	case points.Cmp(thresholdHealer) >= 0:
		return LevelHealer
	case points.Cmp(thresholdFacilitator) >= 0:
		return LevelFacilitator
	case points.Cmp(thresholdCircle) >= 0:
		return LevelCircle
	default:
		return LevelMember
	}
}

// VaultAddress derives the custodial principal that holds ritual
// contributions pending treasury withdrawal. The ledger itself is a valid
// principal with its own balance entry, so transfers into it need no special
// casing.
func VaultAddress() [20]byte {
	hash := ethcrypto.Keccak256([]byte("community/ritual-vault"))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

// Profile is the read-only projection returned for a principal.
type Profile struct {
	Balance            *big.Int
	ContributionPoints *uint256.Int
	Level              string
	CommunityRole      [32]byte
	PrayersOffered     uint64
	PrayersReceived    uint64
}

// Stats is the read-only projection of the ledger-wide counters.
type Stats struct {
	TotalSupply        *big.Int
	AncestralOfferings *big.Int
	VaultBalance       *big.Int
}
