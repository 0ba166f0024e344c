// Package form implements change-tracked drafts for the edit pages.
//
// A Draft holds the record being edited (Current) and the last known-good copy
// (Snapshot). Dirty is structural inequality between the two.
package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	// ErrNotLoaded is returned when submitting before the record was fetched.
	ErrNotLoaded = errors.New("form: record not loaded")
	// ErrNothingChanged blocks edit submissions without changes.
	ErrNothingChanged = errors.New("form: nothing changed")
	// ErrSubmitInProgress blocks a second concurrent submission.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrValidation wraps client-side validation failures.
	ErrValidation = errors.New("form: validation failed")
	// ErrUnknownField is a programming error: the record does not declare the field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidValue reports input that cannot be parsed into the field type.
	ErrInvalidValue = errors.New("form: invalid value")
)

// State is the lifecycle position of a draft.
type State string

const (
	StateLoading    State = "loading"
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

// Mode distinguishes add flows from edit flows.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Record is a statically typed entity draft.
type Record[T any] interface {
	// Fields lists the patchable field names of the value.
	Fields() []string
	// WithField returns a copy with name set to value and dependent derived
	// fields recomputed.
	WithField(name, value string) (T, error)
	// Validate reports required/format problems keyed by field name.
	Validate() FieldErrors
	// Clone returns a deep copy that shares no mutable state.
	Clone() T
}

// FieldErrors maps a field name to a message key.
type FieldErrors map[string]string

// ValidationError carries the field errors of a rejected submission.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("form: invalid fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FieldError wraps a per-field parse failure.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("form: field %s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// Draft is the per-form state machine.
type Draft[T Record[T]] struct {
	State    State       `json:"state"`
	Snapshot *T          `json:"snapshot,omitempty"`
	Current  T           `json:"current"`
	Errors   FieldErrors `json:"errors,omitempty"`
	Seq      int64       `json:"seq"`
}

// New returns a draft waiting for its record.
func New[T Record[T]]() *Draft[T] {
	return &Draft[T]{State: StateLoading}
}

// Load seeds snapshot and current with rec.
func (d *Draft[T]) Load(rec T) {
	snapshot := rec.Clone()
	d.Snapshot = &snapshot
	d.Current = rec.Clone()
	d.State = StateIdle
	d.Errors = nil
}

// Loaded reports whether a snapshot exists.
func (d *Draft[T]) Loaded() bool {
	return d != nil && d.Snapshot != nil
}

// Dirty reports whether current differs from the snapshot.
func (d *Draft[T]) Dirty() bool {
	if !d.Loaded() {
		return false
	}
	return !cmp.Equal(d.Current, *d.Snapshot, cmpopts.EquateEmpty())
}

// PatchField sets one field. It is a no-op before the record is loaded.
func (d *Draft[T]) PatchField(name, value string) error {
	if !d.Loaded() {
		return nil
	}
	next, err := d.Current.WithField(name, value)
	if err != nil {
		return err
	}
	d.Current = next
	if d.State == StateSuccess {
		d.State = StateIdle
	}
	delete(d.Errors, name)
	return nil
}

// Apply runs a structural edit such as adding or removing an item line.
func (d *Draft[T]) Apply(fn func(T) (T, error)) error {
	if !d.Loaded() {
		return nil
	}
	next, err := fn(d.Current)
	if err != nil {
		return err
	}
	d.Current = next
	if d.State == StateSuccess {
		d.State = StateIdle
	}
	return nil
}

// NextSeq hands out the next form-scoped sequence number.
func (d *Draft[T]) NextSeq() int64 {
	d.Seq++
	return d.Seq
}

// Reset restores the snapshot. No-op when nothing was loaded.
func (d *Draft[T]) Reset() {
	if !d.Loaded() {
		return
	}
	d.Current = (*d.Snapshot).Clone()
	d.Errors = nil
	d.State = StateIdle
}

// Submit validates and sends the draft. send is not called when the draft is
// not loaded, already submitting, unchanged in edit mode, or invalid. On
// failure the draft is kept as-is so the user can retry.
func (d *Draft[T]) Submit(ctx context.Context, mode Mode, send func(context.Context, T) error) error {
	if !d.Loaded() {
		return ErrNotLoaded
	}
	if d.State == StateSubmitting {
		return ErrSubmitInProgress
	}
	if mode == ModeEdit && !d.Dirty() {
		return ErrNothingChanged
	}
	if errs := d.Current.Validate(); len(errs) > 0 {
		d.Errors = errs
		return &ValidationError{Fields: errs}
	}

	d.State = StateSubmitting
	if err := send(ctx, d.Current.Clone()); err != nil {
		d.State = StateIdle
		return err
	}
	snapshot := d.Current.Clone()
	d.Snapshot = &snapshot
	d.Errors = nil
	d.State = StateSuccess
	return nil
}

// ApplyValues patches every declared field present in values. Parse failures
// are collected per field; the remaining fields are still applied.
func ApplyValues[T Record[T]](d *Draft[T], values map[string][]string) FieldErrors {
	if !d.Loaded() {
		return nil
	}
	errs := FieldErrors{}
	for _, name := range d.Current.Fields() {
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := d.PatchField(name, raw[0]); err != nil {
			if errors.Is(err, ErrInvalidValue) {
				errs[name] = "invalid"
				continue
			}
			errs[name] = err.Error()
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if d.Errors == nil {
		d.Errors = FieldErrors{}
	}
	for name, msg := range errs {
		d.Errors[name] = msg
	}
	return errs
}
