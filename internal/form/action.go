package form

import (
	"context"
	"net/url"
)

// Action names the button that posted an edit page.
type Action string

const (
	// ActionSave patches the posted fields and submits.
	ActionSave Action = "save"
	// ActionReset discards local edits.
	ActionReset Action = "reset"
	// ActionUpdate patches the posted fields and re-renders the page, e.g. to
	// refresh derived pricing.
	ActionUpdate Action = "update"
)

// ParseAction maps the posted "action" value; anything unknown is an update so
// a stray button never submits.
func ParseAction(raw string) Action {
	switch Action(raw) {
	case ActionSave, ActionReset:
		return Action(raw)
	default:
		return ActionUpdate
	}
}

// Handle runs one posted edit page against d. Reset ignores the posted values.
// Save patches first and refuses to send when any field failed to parse.
func Handle[T Record[T]](ctx context.Context, d *Draft[T], mode Mode, action Action, values url.Values, send func(context.Context, T) error) error {
	if action == ActionReset {
		d.Reset()
		return nil
	}
	parseErrs := ApplyValues(d, values)
	if action != ActionSave {
		return nil
	}
	if len(parseErrs) > 0 {
		return &ValidationError{Fields: d.Errors}
	}
	return d.Submit(ctx, mode, send)
}
