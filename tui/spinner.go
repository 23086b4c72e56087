package tui

import (
	"context"

	"github.com/charmbracelet/huh/spinner"
)

// ShowSpinner will display a spinner while the action is being performed.
// Without a terminal the action simply runs.
func ShowSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !HasTTY {
		return action(ctx)
	}
	var actionErr error
	err := spinner.New().
		Context(ctx).
		Title(title).
		Action(func() { actionErr = action(ctx) }).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
