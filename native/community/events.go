package community

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"aseledger/core/types"
)

const (
	EventTypePrayerOffered       = "community.prayerOffered"
	EventTypeSpiritualLabor      = "community.spiritualLabor"
	EventTypeAncestralOffering   = "community.ancestralOffering"
	EventTypeBatchPrayersOffered = "community.batchPrayersOffered"
	EventTypeGathering           = "community.gathering"
	EventTypeBlessing            = "community.blessing"
	EventTypeMutualAid           = "community.mutualAid"
	EventTypeRoleUpdated         = "community.roleUpdated"
	EventTypePaused              = "community.paused"
	EventTypeUnpaused            = "community.unpaused"
	EventTypeTreasuryWithdrawal  = "community.treasuryWithdrawal"
)

func addrAttr(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

func tagAttr(tag [32]byte) string {
	return "0x" + hex.EncodeToString(tag[:])
}

func amountAttr(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func newPrayerOfferedEvent(from, to [20]byte, amount *big.Int, intention string) *types.Event {
	return &types.Event{
		Type: EventTypePrayerOffered,
		Attributes: map[string]string{
			"from":      addrAttr(from),
			"to":        addrAttr(to),
			"amount":    amountAttr(amount),
			"intention": intention,
		},
	}
}

func newSpiritualLaborEvent(contributor [20]byte, workType [32]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeSpiritualLabor,
		Attributes: map[string]string{
			"contributor": addrAttr(contributor),
			"workType":    tagAttr(workType),
			"amount":      amountAttr(amount),
		},
	}
}

func newAncestralOfferingEvent(offerer [20]byte, amount *big.Int, purpose [32]byte) *types.Event {
	return &types.Event{
		Type: EventTypeAncestralOffering,
		Attributes: map[string]string{
			"offerer": addrAttr(offerer),
			"amount":  amountAttr(amount),
			"purpose": tagAttr(purpose),
		},
	}
}

func newBatchPrayersOfferedEvent(from [20]byte, totalAmount *big.Int, count int) *types.Event {
	return &types.Event{
		Type: EventTypeBatchPrayersOffered,
		Attributes: map[string]string{
			"from":        addrAttr(from),
			"totalAmount": amountAttr(totalAmount),
			"count":       strconv.Itoa(count),
		},
	}
}

func newGatheringEvent(organizer [20]byte, gatheringID [32]byte, location string) *types.Event {
	return &types.Event{
		Type: EventTypeGathering,
		Attributes: map[string]string{
			"organizer":   addrAttr(organizer),
			"gatheringId": tagAttr(gatheringID),
			"location":    location,
		},
	}
}

func newBlessingEvent(ritualID [32]byte, newTotal *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeBlessing,
		Attributes: map[string]string{
			"ritualId": tagAttr(ritualID),
			"newTotal": amountAttr(newTotal),
		},
	}
}

func newMutualAidEvent(supporter, recipient [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeMutualAid,
		Attributes: map[string]string{
			"supporter": addrAttr(supporter),
			"recipient": addrAttr(recipient),
			"amount":    amountAttr(amount),
		},
	}
}

func newRoleUpdatedEvent(caller, principal [20]byte, role [32]byte) *types.Event {
	return &types.Event{
		Type: EventTypeRoleUpdated,
		Attributes: map[string]string{
			"caller":    addrAttr(caller),
			"principal": addrAttr(principal),
			"role":      tagAttr(role),
		},
	}
}

func newPauseEvent(caller [20]byte, paused bool) *types.Event {
	eventType := EventTypeUnpaused
	if paused {
		eventType = EventTypePaused
	}
	return &types.Event{
		Type:       eventType,
		Attributes: map[string]string{"caller": addrAttr(caller)},
	}
}

func newTreasuryWithdrawalEvent(caller, recipient [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeTreasuryWithdrawal,
		Attributes: map[string]string{
			"caller":    addrAttr(caller),
			"recipient": addrAttr(recipient),
			"amount":    amountAttr(amount),
		},
	}
}
