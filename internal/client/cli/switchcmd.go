package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// SwitchCreate interactively creates a dead man's switch. When a payload is
// included, the printed disclosure link is the only copy of the payload
// key; losing it means recipients cannot read the payload.
func (a *App) SwitchCreate(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Switch name", os.Stdout)
	if err != nil {
		return err
	}

	intervalStr, err := getSimpleText(a.reader, "Check-in interval (e.g. 72h)", os.Stdout)
	if err != nil {
		return err
	}
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}

	recipientsStr, err := getSimpleText(a.reader, "Recipient emails (comma separated, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	var recipients []string
	for _, r := range strings.Split(recipientsStr, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}

	payloadStr, err := getSimpleText(a.reader, "Include journal payload? (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	includePayload := strings.ToLower(payloadStr) == "yes"

	link, err := a.switches.Create(ctx, name, interval, recipients, includePayload)
	if err != nil {
		return err
	}

	printlnFn("Switch created.")
	if link != "" {
		printlnFn("Disclosure link (share with your recipients, there is no other copy):")
		printlnFn(link)
	}
	return nil
}

func (a *App) SwitchList(ctx context.Context) error {
	items, err := a.switches.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		status := "active"
		if item.Due {
			status = "OVERDUE"
		}
		if item.IsTriggered {
			status = "TRIGGERED"
		}
		printlnFn(fmt.Sprintf("%s  %-10s  every %s  last check-in %s  %s",
			item.Id, status, item.TimerInterval, item.LastCheckIn.Format(time.RFC3339), item.Name))
	}
	return nil
}

func (a *App) CheckIn(ctx context.Context, id string) error {
	at, err := a.switches.CheckIn(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("Checked in at", at.Format(time.RFC3339))
	return nil
}

// Disclose resolves a disclosure link and prints the decrypted payload.
// Works without a session: the payload key rides in the link fragment.
func (a *App) Disclose(ctx context.Context, link string) error {
	payload, err := a.switches.FetchDisclosure(ctx, link)
	if err != nil {
		return err
	}
	printlnFn(string(payload))
	return nil
}
