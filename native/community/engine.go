package community

import (
	"errors"
	"math"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"aseledger/core/events"
	"aseledger/core/types"
	"aseledger/native/common"
)

var errNilState = errors.New("community engine: state not configured")

// State describes the minimal functionality the community engine needs from
// the surrounding ledger state implementation.
type State interface {
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	TotalSupply() (*big.Int, error)
	SetTotalSupply(amount *big.Int) error
	AncestralOfferings() (*big.Int, error)
	SetAncestralOfferings(amount *big.Int) error
	SetRole(role string, addr []byte) error
	RemoveRole(role string, addr []byte) error
	HasRole(role string, addr []byte) bool
	GatheringOrganizer(id [32]byte) ([20]byte, bool, error)
	PutGathering(id [32]byte, organizer [20]byte) error
	RitualTotal(id [32]byte) (*big.Int, error)
	SetRitualTotal(id [32]byte, amount *big.Int) error
	IsPaused(module string) bool
	SetPaused(module string, paused bool) error
}

// Engine implements the community ledger operations over the state
// abstraction. Every balance mutation routes through the shared
// transfer/mint/burn primitives, which enforce the module pause guard
// uniformly.
type Engine struct {
	state   State
	emitter events.Emitter
	vault   [20]byte
	entered bool
}

// NewEngine creates a community engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   VaultAddress(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetEmitter configures the emitter receiving engine events. Passing nil
// restores the no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	e.emitter = emitter
}

// Vault returns the custodial principal holding ritual contributions.
func (e *Engine) Vault() [20]byte { return e.vault }

func (e *Engine) emit(evt *types.Event) {
	if evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// enter flips the re-entrancy latch. The host runs operations sequentially,
// so the latch can only be observed set when a callback triggered from within
// an operation re-enters the engine.
func (e *Engine) enter() error {
	if e.entered {
		return ErrReentrantCall
	}
	e.entered = true
	return nil
}

func (e *Engine) leave() { e.entered = false }

func (e *Engine) guard() error {
	if e.state == nil {
		return errNilState
	}
	return common.Guard(e.state, ModuleName)
}

func (e *Engine) requireRole(role string, caller [20]byte) error {
	if e.state == nil {
		return errNilState
	}
	if !e.state.HasRole(role, caller[:]) {
		return ErrUnauthorized
	}
	return nil
}

func amountOrZero(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return new(big.Int).Set(amount), nil
}

func satAddUint64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// addContributionPoints accrues amount onto points, saturating at the
// 128-bit width of the accumulator field.
func addContributionPoints(points *uint256.Int, amount *big.Int) *uint256.Int {
	if points == nil {
		points = uint256.NewInt(0)
	}
	if amount == nil {
		return new(uint256.Int).Set(points)
	}
	credit, overflow := uint256.FromBig(amount)
	if overflow {
		return new(uint256.Int).Set(maxContributionPoints)
	}
	sum, overflow := new(uint256.Int).AddOverflow(points, credit)
	if overflow || sum.Cmp(maxContributionPoints) > 0 {
		return new(uint256.Int).Set(maxContributionPoints)
	}
	return sum
}

// transfer moves amount between principals. insufficient is the sentinel
// surfaced when the sender balance cannot cover the amount; the operations
// differ on which member of the error taxonomy that is.
func (e *Engine) transfer(from, to [20]byte, amount *big.Int, insufficient error) error {
	if err := e.guard(); err != nil {
		return err
	}
	amt, err := amountOrZero(amount)
	if err != nil {
		return err
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	if fromAcc.BalanceASE.Cmp(amt) < 0 {
		return insufficient
	}
	if from == to {
		return nil
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	fromAcc.BalanceASE = new(big.Int).Sub(fromAcc.BalanceASE, amt)
	toAcc.BalanceASE = new(big.Int).Add(toAcc.BalanceASE, amt)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to[:], toAcc)
}

// mint credits amount to the recipient and grows total supply by the same.
func (e *Engine) mint(to [20]byte, amount *big.Int) error {
	if err := e.guard(); err != nil {
		return err
	}
	amt, err := amountOrZero(amount)
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	supply, err := e.state.TotalSupply()
	if err != nil {
		return err
	}
	toAcc.BalanceASE = new(big.Int).Add(toAcc.BalanceASE, amt)
	if err := e.state.PutAccount(to[:], toAcc); err != nil {
		return err
	}
	return e.state.SetTotalSupply(new(big.Int).Add(supply, amt))
}

// burn debits amount from the sender and shrinks total supply by the same.
func (e *Engine) burn(from [20]byte, amount *big.Int, insufficient error) error {
	if err := e.guard(); err != nil {
		return err
	}
	amt, err := amountOrZero(amount)
	if err != nil {
		return err
	}
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	if fromAcc.BalanceASE.Cmp(amt) < 0 {
		return insufficient
	}
	supply, err := e.state.TotalSupply()
	if err != nil {
		return err
	}
	fromAcc.BalanceASE = new(big.Int).Sub(fromAcc.BalanceASE, amt)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	return e.state.SetTotalSupply(new(big.Int).Sub(supply, amt))
}

// Transfer is the inherited plain token transfer.
func (e *Engine) Transfer(from, to [20]byte, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	return e.transfer(from, to, amount, ErrInsufficientBalance)
}

// OfferPrayer moves amount from sender to recipient labelled with a
// non-empty intention, crediting both prayer counters.
func (e *Engine) OfferPrayer(from, to [20]byte, amount *big.Int, intention string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if strings.TrimSpace(intention) == "" {
		return ErrEmptyIntention
	}
	if err := e.transfer(from, to, amount, ErrInsufficientBalance); err != nil {
		return err
	}
	if err := e.creditPrayerCounters(from, to); err != nil {
		return err
	}
	e.emit(newPrayerOfferedEvent(from, to, amount, intention))
	return nil
}

func (e *Engine) creditPrayerCounters(from, to [20]byte) error {
	fromAcc, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	fromAcc.PrayersOffered = satAddUint64(fromAcc.PrayersOffered, 1)
	if err := e.state.PutAccount(from[:], fromAcc); err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	toAcc.PrayersReceived = satAddUint64(toAcc.PrayersReceived, 1)
	return e.state.PutAccount(to[:], toAcc)
}

// RecognizeSpiritualLabor mints amount to the contributor and accrues the
// same amount of contribution points. Treasury role only.
func (e *Engine) RecognizeSpiritualLabor(caller, contributor [20]byte, workType [32]byte, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(RoleTreasury, caller); err != nil {
		return err
	}
	if workType == ([32]byte{}) {
		return ErrEmptyWorkType
	}
	if err := e.mint(contributor, amount); err != nil {
		return err
	}
	acc, err := e.state.GetAccount(contributor[:])
	if err != nil {
		return err
	}
	acc.ContributionPoints = addContributionPoints(acc.ContributionPoints, amount)
	if err := e.state.PutAccount(contributor[:], acc); err != nil {
		return err
	}
	e.emit(newSpiritualLaborEvent(contributor, workType, amount))
	return nil
}

// BurnForAncestors permanently removes amount from circulation and records
// it in the ancestral offerings accumulator.
func (e *Engine) BurnForAncestors(from [20]byte, amount *big.Int, purpose [32]byte) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if purpose == ([32]byte{}) {
		return ErrEmptyPurpose
	}
	if err := e.burn(from, amount, ErrInsufficientAse); err != nil {
		return err
	}
	total, err := e.state.AncestralOfferings()
	if err != nil {
		return err
	}
	amt, err := amountOrZero(amount)
	if err != nil {
		return err
	}
	if err := e.state.SetAncestralOfferings(new(big.Int).Add(total, amt)); err != nil {
		return err
	}
	e.emit(newAncestralOfferingEvent(from, amount, purpose))
	return nil
}

// BatchPrayerOffering applies up to MaxBatchRecipients prayer offerings in
// array order. Validation is completed before any transfer is applied so the
// batch either commits in full or not at all.
func (e *Engine) BatchPrayerOffering(from [20]byte, recipients [][20]byte, amounts []*big.Int, intentions []string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if len(recipients) != len(amounts) || len(recipients) != len(intentions) {
		return ErrArrayLengthMismatch
	}
	if len(recipients) > MaxBatchRecipients {
		return ErrTooManyRecipients
	}
	total := big.NewInt(0)
	for i := range recipients {
		if strings.TrimSpace(intentions[i]) == "" {
			return ErrEmptyIntention
		}
		amt, err := amountOrZero(amounts[i])
		if err != nil {
			return err
		}
		total.Add(total, amt)
	}
	sender, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	if sender.BalanceASE.Cmp(total) < 0 {
		return ErrInsufficientBalance
	}
	for i := range recipients {
		if err := e.transfer(from, recipients[i], amounts[i], ErrInsufficientBalance); err != nil {
			return err
		}
		toAcc, err := e.state.GetAccount(recipients[i][:])
		if err != nil {
			return err
		}
		toAcc.PrayersReceived = satAddUint64(toAcc.PrayersReceived, 1)
		if err := e.state.PutAccount(recipients[i][:], toAcc); err != nil {
			return err
		}
		e.emit(newPrayerOfferedEvent(from, recipients[i], amounts[i], intentions[i]))
	}
	sender, err = e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	sender.PrayersOffered = satAddUint64(sender.PrayersOffered, uint64(len(recipients)))
	if err := e.state.PutAccount(from[:], sender); err != nil {
		return err
	}
	e.emit(newBatchPrayersOfferedEvent(from, total, len(recipients)))
	return nil
}

// OrganizeGathering registers the organizer under the gathering identifier.
// Identifiers are write-once; the first organizer wins.
func (e *Engine) OrganizeGathering(organizer [20]byte, gatheringID [32]byte, location string) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	acc, err := e.state.GetAccount(organizer[:])
	if err != nil {
		return err
	}
	if acc.ContributionPoints.Cmp(GatheringMinPoints) < 0 {
		return ErrInsufficientContributions
	}
	if _, exists, err := e.state.GatheringOrganizer(gatheringID); err != nil {
		return err
	} else if exists {
		return ErrGatheringExists
	}
	if err := e.state.PutGathering(gatheringID, organizer); err != nil {
		return err
	}
	e.emit(newGatheringEvent(organizer, gatheringID, location))
	return nil
}

// ContributeToRitual moves amount from the sender into the ledger vault and
// grows the ritual's cumulative offering total.
func (e *Engine) ContributeToRitual(from [20]byte, ritualID [32]byte, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.transfer(from, e.vault, amount, ErrInsufficientAse); err != nil {
		return err
	}
	total, err := e.state.RitualTotal(ritualID)
	if err != nil {
		return err
	}
	newTotal := new(big.Int).Add(total, amount)
	if err := e.state.SetRitualTotal(ritualID, newTotal); err != nil {
		return err
	}
	e.emit(newBlessingEvent(ritualID, newTotal))
	return nil
}

// MutualAidSupport is a plain labelled transfer between community members.
func (e *Engine) MutualAidSupport(from, to [20]byte, amount *big.Int) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.transfer(from, to, amount, ErrInsufficientAse); err != nil {
		return err
	}
	e.emit(newMutualAidEvent(from, to, amount))
	return nil
}

// SetCommunityRole overwrites the principal's community role tag. Treasury
// role only.
func (e *Engine) SetCommunityRole(caller, principal [20]byte, role [32]byte) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(RoleTreasury, caller); err != nil {
		return err
	}
	acc, err := e.state.GetAccount(principal[:])
	if err != nil {
		return err
	}
	acc.CommunityRole = role
	if err := e.state.PutAccount(principal[:], acc); err != nil {
		return err
	}
	e.emit(newRoleUpdatedEvent(caller, principal, role))
	return nil
}

// Pause sets the module pause flag, suppressing every state-changing path.
// Admin role only.
func (e *Engine) Pause(caller [20]byte) error {
	return e.setPaused(caller, true)
}

// Unpause clears the module pause flag. Admin role only. Unpausing is the
// one mutation permitted while paused.
func (e *Engine) Unpause(caller [20]byte) error {
	return e.setPaused(caller, false)
}

func (e *Engine) setPaused(caller [20]byte, paused bool) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if e.state == nil {
		return errNilState
	}
	if err := e.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	if err := e.state.SetPaused(ModuleName, paused); err != nil {
		return err
	}
	e.emit(newPauseEvent(caller, paused))
	return nil
}

// GrantRole adds the principal to the named role's membership. Admin role
// only.
func (e *Engine) GrantRole(caller [20]byte, role string, principal [20]byte) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	return e.state.SetRole(role, principal[:])
}

// RevokeRole removes the principal from the named role's membership. Admin
// role only.
func (e *Engine) RevokeRole(caller [20]byte, role string, principal [20]byte) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(RoleAdmin, caller); err != nil {
		return err
	}
	return e.state.RemoveRole(role, principal[:])
}

// WithdrawRitualOfferings sweeps amount from the pooled vault balance to the
// recipient. Treasury role only. Per-ritual totals are a cumulative audit
// record and are deliberately left untouched by the sweep.
func (e *Engine) WithdrawRitualOfferings(caller [20]byte, amount *big.Int, recipient [20]byte) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.leave()
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireRole(RoleTreasury, caller); err != nil {
		return err
	}
	if err := e.transfer(e.vault, recipient, amount, ErrInsufficientBalance); err != nil {
		return err
	}
	e.emit(newTreasuryWithdrawalEvent(caller, recipient, amount))
	return nil
}

// Profile returns the read-only projection for a principal.
func (e *Engine) Profile(addr [20]byte) (*Profile, error) {
	if e.state == nil {
		return nil, errNilState
	}
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return &Profile{
		Balance:            new(big.Int).Set(acc.BalanceASE),
		ContributionPoints: new(uint256.Int).Set(acc.ContributionPoints),
		Level:              ContributionLevel(acc.ContributionPoints),
		CommunityRole:      acc.CommunityRole,
		PrayersOffered:     acc.PrayersOffered,
		PrayersReceived:    acc.PrayersReceived,
	}, nil
}

// Level returns the contribution tier label for a principal.
func (e *Engine) Level(addr [20]byte) (string, error) {
	if e.state == nil {
		return "", errNilState
	}
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return "", err
	}
	return ContributionLevel(acc.ContributionPoints), nil
}

// CommunityStats returns the ledger-wide counters.
func (e *Engine) CommunityStats() (*Stats, error) {
	if e.state == nil {
		return nil, errNilState
	}
	supply, err := e.state.TotalSupply()
	if err != nil {
		return nil, err
	}
	ancestral, err := e.state.AncestralOfferings()
	if err != nil {
		return nil, err
	}
	vaultAcc, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalSupply:        supply,
		AncestralOfferings: ancestral,
		VaultBalance:       new(big.Int).Set(vaultAcc.BalanceASE),
	}, nil
}
