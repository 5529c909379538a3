// Package switchx defines the protocol side of the dead man's switch: the
// two-state lifecycle, the check-in rules, and the disclosure-link contract.
// The timer that actually fires a switch belongs to an external scheduler;
// nothing here runs on a clock of its own.
package switchx

import (
	"fmt"
	"time"

	"github.com/inkveil/inkveil/internal/common"
)

// State is the lifecycle state of a switch.
type State string

const (
	// StateActive means check-ins keep extending the deadline.
	StateActive State = "active"
	// StateTriggered is terminal. A switch never leaves it.
	StateTriggered State = "triggered"
)

// Switch is the protocol view of one timed disclosure rule. The name is
// ciphertext under the owner's master key; the payload ciphertext lives in
// object storage and only its IV travels with the switch.
type Switch struct {
	ID            string
	EncryptedName []byte
	NameIV        []byte
	TimerInterval time.Duration
	LastCheckIn   time.Time
	State         State
	TriggeredAt   time.Time
	HasPayload    bool
	PayloadIV     []byte
	Recipients    []string
}

// CheckIn records a sign of life, resetting the deadline. The crypto layer
// does nothing else here. Rejected with common.ErrSwitchTriggered once the
// switch is terminal, and LastCheckIn never moves backwards while active.
func (s *Switch) CheckIn(now time.Time) error {
	if s.State == StateTriggered {
		return fmt.Errorf("%w", common.ErrSwitchTriggered)
	}
	if now.After(s.LastCheckIn) {
		s.LastCheckIn = now
	}
	return nil
}

// Due reports whether the inactivity interval has elapsed. The external
// scheduler polls this; the core never fires switches itself.
func (s *Switch) Due(now time.Time) bool {
	return s.State == StateActive && now.Sub(s.LastCheckIn) >= s.TimerInterval
}

// Trigger moves the switch into its terminal state. Exactly one transition
// is possible: triggering an already-triggered switch fails, which also
// guards against a payload key ever being re-disclosed.
func (s *Switch) Trigger(now time.Time) error {
	if s.State == StateTriggered {
		return fmt.Errorf("%w", common.ErrSwitchTriggered)
	}
	s.State = StateTriggered
	s.TriggeredAt = now
	return nil
}
