package community

import "errors"

var (
	ErrEmptyIntention            = errors.New("community: empty intention")
	ErrEmptyWorkType             = errors.New("community: empty work type")
	ErrEmptyPurpose              = errors.New("community: empty purpose")
	ErrInvalidAmount             = errors.New("community: invalid amount")
	ErrArrayLengthMismatch       = errors.New("community: array length mismatch")
	ErrTooManyRecipients         = errors.New("community: too many recipients")
	ErrInsufficientBalance       = errors.New("community: insufficient balance")
	ErrInsufficientAse           = errors.New("community: insufficient ase")
	ErrInsufficientContributions = errors.New("community: insufficient contributions")
	ErrGatheringExists           = errors.New("community: gathering already registered")
	ErrUnauthorized              = errors.New("community: unauthorized")
	ErrReentrantCall             = errors.New("community: reentrant call")
)
