package models

import "time"

// SwitchOverview is the decrypted list view of a switch.
type SwitchOverview struct {
	Id            string
	Name          string
	TimerInterval time.Duration
	LastCheckIn   time.Time
	IsTriggered   bool
	// Due means the check-in deadline has passed but the server has not
	// swept the switch yet. A last call to check in.
	Due        bool
	HasPayload bool
	Recipients []string
}
