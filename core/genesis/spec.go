package genesis

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"aseledger/core/state"
	"aseledger/native/community"
)

// DecimalPlaces is the fixed-point precision of ASE amounts.
const DecimalPlaces = 18

// InitialSupplyASE is the whole-unit supply allocated to the deployer by the
// default genesis.
const InitialSupplyASE = 1_000_000

// Spec describes the genesis state of a community ledger: initial balance
// allocations and role grants.
type Spec struct {
	GenesisTime string              `json:"genesisTime,omitempty"`
	Alloc       map[string]string   `json:"alloc"` // addr -> amount in base units
	Roles       map[string][]string `json:"roles"` // role -> []addr
}

var knownRoles = map[string]struct{}{
	community.RoleAdmin:     {},
	community.RoleTreasury:  {},
	community.RoleOrganizer: {},
}

// UnitMultiplier returns 10^DecimalPlaces.
func UnitMultiplier() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalPlaces), nil)
}

// Default builds the genesis spec granting the deployer the entire initial
// supply plus the Admin, Treasury and Organizer roles.
func Default(deployer [20]byte) *Spec {
	addr := "0x" + hex.EncodeToString(deployer[:])
	supply := new(big.Int).Mul(big.NewInt(InitialSupplyASE), UnitMultiplier())
	return &Spec{
		Alloc: map[string]string{addr: supply.String()},
		Roles: map[string][]string{
			community.RoleAdmin:     {addr},
			community.RoleTreasury:  {addr},
			community.RoleOrganizer: {addr},
		},
	}
}

// LoadFile reads and validates a genesis spec from disk.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	spec := new(Spec)
	if err := json.Unmarshal(data, spec); err != nil {
		return nil, fmt.Errorf("genesis: decode %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func parseAddress(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("genesis: decode address %q: %w", raw, err)
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("genesis: address %q must be 20 bytes", raw)
	}
	copy(addr[:], decoded)
	return addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("genesis: invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("genesis: negative amount %q", raw)
	}
	return amount, nil
}

// Validate checks the spec for malformed addresses, bad amounts and unknown
// role names.
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("genesis: spec nil")
	}
	seen := map[[20]byte]struct{}{}
	for rawAddr, rawAmount := range s.Alloc {
		addr, err := parseAddress(rawAddr)
		if err != nil {
			return err
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("genesis: duplicate alloc entry for %s", rawAddr)
		}
		seen[addr] = struct{}{}
		if _, err := parseAmount(rawAmount); err != nil {
			return err
		}
	}
	for role, members := range s.Roles {
		if _, ok := knownRoles[role]; !ok {
			return fmt.Errorf("genesis: unknown role %q", role)
		}
		for _, member := range members {
			if _, err := parseAddress(member); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply writes the genesis allocations and role grants onto the state
// manager and records the allocated sum as the total supply. Alloc entries
// are applied in sorted address order for determinism.
func (s *Spec) Apply(manager *state.Manager) error {
	if manager == nil {
		return fmt.Errorf("genesis: state manager required")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	keys := make([]string, 0, len(s.Alloc))
	for rawAddr := range s.Alloc {
		keys = append(keys, rawAddr)
	}
	sort.Strings(keys)
	supply := big.NewInt(0)
	for _, rawAddr := range keys {
		addr, err := parseAddress(rawAddr)
		if err != nil {
			return err
		}
		amount, err := parseAmount(s.Alloc[rawAddr])
		if err != nil {
			return err
		}
		account, err := manager.GetAccount(addr[:])
		if err != nil {
			return err
		}
		account.BalanceASE = new(big.Int).Add(account.BalanceASE, amount)
		if err := manager.PutAccount(addr[:], account); err != nil {
			return err
		}
		supply.Add(supply, amount)
	}
	if err := manager.SetTotalSupply(supply); err != nil {
		return err
	}
	for role, members := range s.Roles {
		for _, member := range members {
			addr, err := parseAddress(member)
			if err != nil {
				return err
			}
			if err := manager.SetRole(role, addr[:]); err != nil {
				return err
			}
		}
	}
	return nil
}
