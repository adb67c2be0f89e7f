package core

import (
	"math/big"
	"sync"

	"aseledger/core/events"
	"aseledger/core/state"
	"aseledger/core/types"
	"aseledger/native/community"
	"aseledger/storage"
)

// Ledger is the host-facing façade over the community engine. A single
// writer lock is held for the duration of one logical operation, and events
// from an operation become observable only after it commits; a failed
// operation leaves no trace in the event log.
type Ledger struct {
	mu     sync.Mutex
	state  *state.Manager
	engine *community.Engine
	events []types.Event
}

// NewLedger constructs a ledger over the provided database.
func NewLedger(db storage.Database) *Ledger {
	manager := state.NewManager(db)
	engine := community.NewEngine()
	engine.SetState(manager)
	return &Ledger{state: manager, engine: engine}
}

// StateManager exposes the underlying state manager, primarily for genesis
// initialisation.
func (l *Ledger) StateManager() *state.Manager { return l.state }

// VaultAddress returns the ledger's own custodial principal.
func (l *Ledger) VaultAddress() [20]byte { return l.engine.Vault() }

func (l *Ledger) execute(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	recorder := &events.Recorder{}
	l.engine.SetEmitter(recorder)
	defer l.engine.SetEmitter(nil)
	if err := fn(); err != nil {
		return err
	}
	l.events = append(l.events, recorder.Events()...)
	return nil
}

// Events returns a snapshot of the committed event stream in emission order.
func (l *Ledger) Events() []types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Transfer is the inherited plain token transfer.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	return l.execute(func() error { return l.engine.Transfer(from, to, amount) })
}

// OfferPrayer performs a labelled transfer crediting both prayer counters.
func (l *Ledger) OfferPrayer(from, to [20]byte, amount *big.Int, intention string) error {
	return l.execute(func() error { return l.engine.OfferPrayer(from, to, amount, intention) })
}

// RecognizeSpiritualLabor mints amount to the contributor with matching
// contribution points. Treasury role only.
func (l *Ledger) RecognizeSpiritualLabor(caller, contributor [20]byte, workType [32]byte, amount *big.Int) error {
	return l.execute(func() error {
		return l.engine.RecognizeSpiritualLabor(caller, contributor, workType, amount)
	})
}

// BurnForAncestors permanently removes amount from circulation.
func (l *Ledger) BurnForAncestors(from [20]byte, amount *big.Int, purpose [32]byte) error {
	return l.execute(func() error { return l.engine.BurnForAncestors(from, amount, purpose) })
}

// BatchPrayerOffering applies a batch of prayer offerings all-or-nothing.
func (l *Ledger) BatchPrayerOffering(from [20]byte, recipients [][20]byte, amounts []*big.Int, intentions []string) error {
	return l.execute(func() error {
		return l.engine.BatchPrayerOffering(from, recipients, amounts, intentions)
	})
}

// OrganizeGathering registers a gathering under a write-once identifier.
func (l *Ledger) OrganizeGathering(organizer [20]byte, gatheringID [32]byte, location string) error {
	return l.execute(func() error {
		return l.engine.OrganizeGathering(organizer, gatheringID, location)
	})
}

// ContributeToRitual moves amount into the ledger vault and grows the
// ritual's cumulative total.
func (l *Ledger) ContributeToRitual(from [20]byte, ritualID [32]byte, amount *big.Int) error {
	return l.execute(func() error { return l.engine.ContributeToRitual(from, ritualID, amount) })
}

// MutualAidSupport performs a plain labelled transfer between members.
func (l *Ledger) MutualAidSupport(from, to [20]byte, amount *big.Int) error {
	return l.execute(func() error { return l.engine.MutualAidSupport(from, to, amount) })
}

// SetCommunityRole overwrites the principal's community role tag. Treasury
// role only.
func (l *Ledger) SetCommunityRole(caller, principal [20]byte, role [32]byte) error {
	return l.execute(func() error { return l.engine.SetCommunityRole(caller, principal, role) })
}

// Pause suppresses every state-changing path. Admin role only.
func (l *Ledger) Pause(caller [20]byte) error {
	return l.execute(func() error { return l.engine.Pause(caller) })
}

// Unpause restores the state-changing paths. Admin role only.
func (l *Ledger) Unpause(caller [20]byte) error {
	return l.execute(func() error { return l.engine.Unpause(caller) })
}

// GrantRole adds the principal to the named role. Admin role only.
func (l *Ledger) GrantRole(caller [20]byte, role string, principal [20]byte) error {
	return l.execute(func() error { return l.engine.GrantRole(caller, role, principal) })
}

// RevokeRole removes the principal from the named role. Admin role only.
func (l *Ledger) RevokeRole(caller [20]byte, role string, principal [20]byte) error {
	return l.execute(func() error { return l.engine.RevokeRole(caller, role, principal) })
}

// WithdrawRitualOfferings sweeps pooled vault funds to the recipient.
// Treasury role only.
func (l *Ledger) WithdrawRitualOfferings(caller [20]byte, amount *big.Int, recipient [20]byte) error {
	return l.execute(func() error {
		return l.engine.WithdrawRitualOfferings(caller, amount, recipient)
	})
}

// GetUserProfile returns the read-only projection for a principal.
func (l *Ledger) GetUserProfile(addr [20]byte) (*community.Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Profile(addr)
}

// GetContributionLevel returns the tier label for a principal.
func (l *Ledger) GetContributionLevel(addr [20]byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Level(addr)
}

// GetCommunityStats returns the ledger-wide counters.
func (l *Ledger) GetCommunityStats() (*community.Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.CommunityStats()
}
