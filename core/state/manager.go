package state

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"aseledger/core/types"
	"aseledger/storage"
)

// Manager provides typed read and write access to the community ledger state
// stored in the key-value backend. Keys are keccak256 hashes of prefixed byte
// strings; values are RLP encoded, except the pause payload which is JSON for
// operator inspectability.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	accountPrefix   = []byte("community/account:")
	rolePrefix      = []byte("community/role:")
	gatheringPrefix = []byte("community/gathering:")
	ritualPrefix    = []byte("community/ritual:")
	supplyKey       = ethcrypto.Keccak256([]byte("community/total-supply"))
	ancestralKey    = ethcrypto.Keccak256([]byte("community/ancestral-offerings"))
	pausesKey       = ethcrypto.Keccak256([]byte("community/pauses"))
)

func prefixedKey(prefix, suffix []byte) []byte {
	buf := make([]byte, len(prefix)+len(suffix))
	copy(buf, prefix)
	copy(buf[len(prefix):], suffix)
	return ethcrypto.Keccak256(buf)
}

func accountKey(addr []byte) []byte {
	return prefixedKey(accountPrefix, addr)
}

func roleKey(role string) []byte {
	return prefixedKey(rolePrefix, []byte(role))
}

func gatheringKey(id [32]byte) []byte {
	return prefixedKey(gatheringPrefix, id[:])
}

func ritualKey(id [32]byte) []byte {
	return prefixedKey(ritualPrefix, id[:])
}

// GetAccount loads the account record for the provided address. Untouched
// principals yield a zero-valued record, never an error.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("state: address must not be empty")
	}
	data, err := m.db.Get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return (&types.Account{}).Normalize(), nil
	}
	account := new(types.Account)
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return account.Normalize(), nil
}

// PutAccount stores the account record for the provided address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("state: account must not be nil")
	}
	account = account.Normalize()
	if account.BalanceASE.Sign() < 0 {
		return fmt.Errorf("state: negative balance not allowed")
	}
	encoded, err := rlp.EncodeToBytes(account)
	if err != nil {
		return err
	}
	return m.db.Put(accountKey(addr), encoded)
}

func (m *Manager) getAmount(key []byte) (*big.Int, error) {
	data, err := m.db.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	amount := new(big.Int)
	if err := rlp.DecodeBytes(data, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

func (m *Manager) setAmount(key []byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative amount not allowed")
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// TotalSupply returns the circulating supply tracked by the ledger.
func (m *Manager) TotalSupply() (*big.Int, error) {
	return m.getAmount(supplyKey)
}

// SetTotalSupply stores the circulating supply.
func (m *Manager) SetTotalSupply(amount *big.Int) error {
	return m.setAmount(supplyKey, amount)
}

// AncestralOfferings returns the cumulative amount permanently removed from
// supply.
func (m *Manager) AncestralOfferings() (*big.Int, error) {
	return m.getAmount(ancestralKey)
}

// SetAncestralOfferings stores the cumulative burn total.
func (m *Manager) SetAncestralOfferings(amount *big.Int) error {
	return m.setAmount(ancestralKey, amount)
}

// SetRole associates an address with the specified role. Duplicate
// assignments are ignored while the stored list remains sorted for
// determinism.
func (m *Manager) SetRole(role string, addr []byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("state: role must not be empty")
	}
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	members, err := m.RoleMembers(trimmed)
	if err != nil {
		return err
	}
	for _, existing := range members {
		if bytes.Equal(existing, addr) {
			return nil
		}
	}
	members = append(members, append([]byte(nil), addr...))
	sort.Slice(members, func(i, j int) bool {
		return hex.EncodeToString(members[i]) < hex.EncodeToString(members[j])
	})
	encoded, err := rlp.EncodeToBytes(members)
	if err != nil {
		return err
	}
	return m.db.Put(roleKey(trimmed), encoded)
}

// RemoveRole disassociates an address from the specified role. Removing a
// non-member is a no-op.
func (m *Manager) RemoveRole(role string, addr []byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("state: role must not be empty")
	}
	members, err := m.RoleMembers(trimmed)
	if err != nil {
		return err
	}
	filtered := members[:0]
	for _, existing := range members {
		if !bytes.Equal(existing, addr) {
			filtered = append(filtered, existing)
		}
	}
	if len(filtered) == len(members) {
		return nil
	}
	encoded, err := rlp.EncodeToBytes(filtered)
	if err != nil {
		return err
	}
	return m.db.Put(roleKey(trimmed), encoded)
}

// RoleMembers returns all addresses assigned to the provided role.
func (m *Manager) RoleMembers(role string) ([][]byte, error) {
	data, err := m.db.Get(roleKey(strings.TrimSpace(role)))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return [][]byte{}, nil
	}
	var members [][]byte
	if err := rlp.DecodeBytes(data, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// HasRole reports whether the provided address is associated with the
// specified role. Errors while reading the underlying state result in a false
// return, matching the best-effort semantics required by the callers.
func (m *Manager) HasRole(role string, addr []byte) bool {
	if len(addr) == 0 {
		return false
	}
	members, err := m.RoleMembers(role)
	if err != nil {
		return false
	}
	for _, member := range members {
		if bytes.Equal(member, addr) {
			return true
		}
	}
	return false
}

// GatheringOrganizer returns the principal registered under the supplied
// gathering identifier, if any.
func (m *Manager) GatheringOrganizer(id [32]byte) ([20]byte, bool, error) {
	var organizer [20]byte
	data, err := m.db.Get(gatheringKey(id))
	if err != nil {
		return organizer, false, err
	}
	if len(data) == 0 {
		return organizer, false, nil
	}
	var stored []byte
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return organizer, false, err
	}
	if len(stored) != len(organizer) {
		return organizer, false, fmt.Errorf("state: malformed organizer record")
	}
	copy(organizer[:], stored)
	return organizer, true, nil
}

// PutGathering records the organizer under the gathering identifier. The
// write-once guarantee is enforced by the community engine, not here.
func (m *Manager) PutGathering(id [32]byte, organizer [20]byte) error {
	encoded, err := rlp.EncodeToBytes(organizer[:])
	if err != nil {
		return err
	}
	return m.db.Put(gatheringKey(id), encoded)
}

// RitualTotal returns the accumulated offering amount for the ritual.
func (m *Manager) RitualTotal(id [32]byte) (*big.Int, error) {
	return m.getAmount(ritualKey(id))
}

// SetRitualTotal stores the accumulated offering amount for the ritual.
func (m *Manager) SetRitualTotal(id [32]byte, amount *big.Int) error {
	return m.setAmount(ritualKey(id), amount)
}

type pausePayload struct {
	Modules map[string]bool `json:"modules"`
}

func (m *Manager) loadPauses() (*pausePayload, error) {
	payload := &pausePayload{Modules: map[string]bool{}}
	data, err := m.db.Get(pausesKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("state: decode pauses: %w", err)
	}
	if payload.Modules == nil {
		payload.Modules = map[string]bool{}
	}
	return payload, nil
}

// IsPaused reports whether the named module's pause toggle is set. Read
// failures report unpaused so that a corrupt pause record cannot brick the
// ledger permanently.
func (m *Manager) IsPaused(module string) bool {
	payload, err := m.loadPauses()
	if err != nil {
		return false
	}
	return payload.Modules[module]
}

// SetPaused toggles the named module's pause flag.
func (m *Manager) SetPaused(module string, paused bool) error {
	payload, err := m.loadPauses()
	if err != nil {
		return err
	}
	payload.Modules[module] = paused
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return m.db.Put(pausesKey, encoded)
}
