package commands

import "errors"

// Причины отказа по игровым правилам. Становятся событием CommandRejected.
var (
	ErrUnknownUnitType     = errors.New("unknown unit type")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNotOwner            = errors.New("unit belongs to another camp")
	ErrNoSuchUnit          = errors.New("unit does not exist")
	ErrOutOfRange          = errors.New("target out of range")
	ErrCannotAttack        = errors.New("unit cannot attack")
	ErrFriendlyFire        = errors.New("target belongs to the same camp")
	ErrAlreadyJoined       = errors.New("camp already joined")
)
