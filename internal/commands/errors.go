// Package commands declares the player/AI command surface and its
// associated typed error enum (design doc Section 7). Command execution
// returns a Result rather than panicking or silently failing; the
// orchestrator records a failure against its issuing country and
// continues (design doc Section 7, "Propagation policy").
package commands

import (
	"fmt"

	"github.com/talgya/concordia/internal/calendar"
	"github.com/talgya/concordia/internal/ids"
)

// ActionErrorKind enumerates every recoverable command failure the kernel
// can produce. NotImplemented exists so the Command enum can be frozen
// early and execution filled in incrementally, per design doc Section 7.
type ActionErrorKind uint8

const (
	ErrTruceActive ActionErrorKind = iota
	ErrInsufficientFunds
	ErrInsufficientManpower
	ErrInsufficientMana
	ErrOutOfRange
	ErrNotAdjacent
	ErrBlockedByZoc
	ErrBlockedByStrait
	ErrNotAtWar
	ErrNotAParticipant
	ErrWarAlreadyExists
	ErrCooldownActive
	ErrInvalidTarget
	ErrUnknownEntity
	ErrNoSuchProvince
	ErrNotImplemented
)

func (k ActionErrorKind) String() string {
	switch k {
	case ErrTruceActive:
		return "TruceActive"
	case ErrInsufficientFunds:
		return "InsufficientFunds"
	case ErrInsufficientManpower:
		return "InsufficientManpower"
	case ErrInsufficientMana:
		return "InsufficientMana"
	case ErrOutOfRange:
		return "OutOfRange"
	case ErrNotAdjacent:
		return "NotAdjacent"
	case ErrBlockedByZoc:
		return "BlockedByZoc"
	case ErrBlockedByStrait:
		return "BlockedByStrait"
	case ErrNotAtWar:
		return "NotAtWar"
	case ErrNotAParticipant:
		return "NotAParticipant"
	case ErrWarAlreadyExists:
		return "WarAlreadyExists"
	case ErrCooldownActive:
		return "CooldownActive"
	case ErrInvalidTarget:
		return "InvalidTarget"
	case ErrUnknownEntity:
		return "UnknownEntity"
	case ErrNoSuchProvince:
		return "NoSuchProvince"
	case ErrNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// ActionError is the kernel's recoverable-command-failure type. It
// implements error so callers can use errors.Is/As, but it is never
// wrapped around an underlying error — it is a terminal, enumerated value
// exactly as design doc Section 7 specifies.
type ActionError struct {
	Kind ActionErrorKind

	// Context fields, populated only for the kinds that use them.
	Target  ids.Tag
	Expires calendar.Date
}

func (e *ActionError) Error() string {
	switch e.Kind {
	case ErrTruceActive:
		return fmt.Sprintf("truce with %s active until %d", e.Target, e.Expires)
	default:
		return e.Kind.String()
	}
}

func TruceActive(target ids.Tag, expires calendar.Date) *ActionError {
	return &ActionError{Kind: ErrTruceActive, Target: target, Expires: expires}
}

func Simple(kind ActionErrorKind) *ActionError {
	return &ActionError{Kind: kind}
}
