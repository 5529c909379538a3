package cli

import (
	"context"
	"fmt"
	"os"
)

// Add prompts for a title and multi-line content and stores the encrypted
// entry.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Enter entry text", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.journal.Add(ctx, title, content)
	if err != nil {
		return err
	}
	printlnFn("Saved entry", id)
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.journal.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		printlnFn(fmt.Sprintf("%s  %s  %s", item.Id, item.CreatedAt.Format("2006-01-02"), item.Title))
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	entry, err := a.journal.Get(ctx, id)
	if err != nil {
		return err
	}
	printlnFn("#", entry.Title)
	printlnFn(entry.Content)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.journal.DeleteByID(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted entry", id)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if err := a.journal.Sync(ctx); err != nil {
		return err
	}
	printlnFn("Sync complete")
	return nil
}
