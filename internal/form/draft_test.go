package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name  string   `json:"name" validate:"required"`
	Email string   `json:"email" validate:"required,email"`
	Tags  []string `json:"tags"`
}

func (c contact) Fields() []string { return []string{"name", "email"} }

func (c contact) WithField(name, value string) (contact, error) {
	switch name {
	case "name":
		c.Name = value
	case "email":
		c.Email = value
	default:
		return c, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return c, nil
}

func (c contact) Validate() FieldErrors { return Check(c) }

func (c contact) Clone() contact {
	c.Tags = append([]string(nil), c.Tags...)
	return c
}

func loaded() *Draft[contact] {
	d := New[contact]()
	d.Load(contact{Name: "Ada", Email: "ada@example.com"})
	return d
}

func TestPatchBeforeLoadIsNoop(t *testing.T) {
	d := New[contact]()
	require.NoError(t, d.PatchField("name", "x"))
	assert.Equal(t, StateLoading, d.State)
	assert.Equal(t, "", d.Current.Name)
	assert.False(t, d.Dirty())
}

func TestDirtyTracksStructuralChange(t *testing.T) {
	d := loaded()
	assert.False(t, d.Dirty())

	require.NoError(t, d.PatchField("name", "Grace"))
	assert.True(t, d.Dirty())

	require.NoError(t, d.PatchField("name", "Ada"))
	assert.False(t, d.Dirty(), "editing back to the original value is clean")
}

func TestNilAndEmptySlicesAreEqual(t *testing.T) {
	d := New[contact]()
	d.Load(contact{Name: "Ada", Email: "ada@example.com", Tags: nil})
	d.Current.Tags = []string{}
	assert.False(t, d.Dirty())
}

func TestUnknownFieldIsReported(t *testing.T) {
	d := loaded()
	err := d.PatchField("phone", "123")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.False(t, d.Dirty())
}

func TestResetRestoresSnapshot(t *testing.T) {
	d := loaded()
	require.NoError(t, d.PatchField("email", "other@example.com"))
	d.Reset()
	assert.Equal(t, "ada@example.com", d.Current.Email)
	assert.False(t, d.Dirty())

	// snapshot and current must not share slices after a reset
	d.Current.Tags = append(d.Current.Tags, "vip")
	assert.Empty(t, d.Snapshot.Tags)
}

func TestResetBeforeLoadIsNoop(t *testing.T) {
	d := New[contact]()
	d.Reset()
	assert.Equal(t, StateLoading, d.State)
}

func TestSubmitEditRequiresChanges(t *testing.T) {
	d := loaded()
	called := false
	err := d.Submit(context.Background(), ModeEdit, func(context.Context, contact) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNothingChanged)
	assert.False(t, called)
}

func TestSubmitCreateAllowsUnchanged(t *testing.T) {
	d := loaded()
	err := d.Submit(context.Background(), ModeCreate, func(context.Context, contact) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, d.State)
}

func TestSubmitValidationBlocksSend(t *testing.T) {
	d := loaded()
	require.NoError(t, d.PatchField("email", "not-an-email"))
	require.NoError(t, d.PatchField("name", ""))

	called := false
	err := d.Submit(context.Background(), ModeEdit, func(context.Context, contact) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.False(t, called)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldErrors{"name": "required", "email": "email"}, verr.Fields)
	assert.Equal(t, verr.Fields, d.Errors)
	assert.Equal(t, StateIdle, d.State)
}

func TestSubmitSuccessReplacesSnapshot(t *testing.T) {
	d := loaded()
	require.NoError(t, d.PatchField("name", "Grace"))

	var sent contact
	err := d.Submit(context.Background(), ModeEdit, func(_ context.Context, c contact) error {
		sent = c
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", sent.Name)
	assert.Equal(t, StateSuccess, d.State)
	assert.False(t, d.Dirty())
	assert.Equal(t, "Grace", d.Snapshot.Name)

	require.NoError(t, d.PatchField("name", "Hopper"))
	assert.Equal(t, StateIdle, d.State)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	d := loaded()
	require.NoError(t, d.PatchField("name", "Grace"))

	boom := errors.New("backend down")
	err := d.Submit(context.Background(), ModeEdit, func(context.Context, contact) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateIdle, d.State)
	assert.Equal(t, "Grace", d.Current.Name)
	assert.Equal(t, "Ada", d.Snapshot.Name)
	assert.True(t, d.Dirty())
}

func TestSubmitWhileSubmittingIsRejected(t *testing.T) {
	d := loaded()
	require.NoError(t, d.PatchField("name", "Grace"))
	d.State = StateSubmitting

	err := d.Submit(context.Background(), ModeEdit, func(context.Context, contact) error {
		t.Fatal("send must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrSubmitInProgress)
}

func TestSubmitBeforeLoad(t *testing.T) {
	d := New[contact]()
	err := d.Submit(context.Background(), ModeCreate, func(context.Context, contact) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestApplyValuesPatchesDeclaredFields(t *testing.T) {
	d := loaded()
	errs := ApplyValues(d, map[string][]string{
		"name":       {"Grace"},
		"csrf_token": {"ignored"},
	})
	assert.Nil(t, errs)
	assert.Equal(t, "Grace", d.Current.Name)
	assert.Equal(t, "ada@example.com", d.Current.Email)
}

func TestNextSeqIsMonotonic(t *testing.T) {
	d := loaded()
	assert.Equal(t, int64(1), d.NextSeq())
	assert.Equal(t, int64(2), d.NextSeq())
}
