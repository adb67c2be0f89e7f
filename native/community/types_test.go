package community

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestContributionLevelBoundaries(t *testing.T) {
	cases := []struct {
		points uint64
		want   string
	}{
		{0, LevelMember},
		{99, LevelMember},
		{100, LevelCircle},
		{999, LevelCircle},
		{1000, LevelFacilitator},
		{4999, LevelFacilitator},
		{5000, LevelHealer},
		{9999, LevelHealer},
		{10000, LevelElder},
		{1_000_000, LevelElder},
	}
	for _, tc := range cases {
		if got := ContributionLevel(uint256.NewInt(tc.points)); got != tc.want {
			t.Fatalf("points %d: got %q, want %q", tc.points, got, tc.want)
		}
	}
	if got := ContributionLevel(nil); got != LevelMember {
		t.Fatalf("nil points: got %q, want %q", got, LevelMember)
	}
	if got := ContributionLevel(maxContributionPoints); got != LevelElder {
		t.Fatalf("saturated points: got %q, want %q", got, LevelElder)
	}
}

func TestVaultAddressIsStable(t *testing.T) {
	a, b := VaultAddress(), VaultAddress()
	if a != b {
		t.Fatal("vault address must be deterministic")
	}
	if a == ([20]byte{}) {
		t.Fatal("vault address must not be the zero principal")
	}
}
