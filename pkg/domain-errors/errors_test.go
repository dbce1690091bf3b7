package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeConflict, "duplicate")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code through wrapping", func(t *testing.T) {
		inner := New(CodeUnavailable, "registry down")
		err := Wrap(inner, CodeInternal, "submit failed")
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.True(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code behind fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeTimeout, "slow"))
		assert.True(t, HasCode(err, CodeTimeout))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestConflictField(t *testing.T) {
	err := Conflict("primaryPhoneNumber", "phone already registered")

	field, ok := FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "primaryPhoneNumber", field)
	assert.Equal(t, "phone already registered", MessageOf(err))

	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.True(t, fe.Has("primaryPhoneNumber"))
	assert.Equal(t, string(CodeConflict), fe[0].Code)
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	assert.NoError(t, fe.Err())

	fe.Add("emailAddress", "contact", "provide a phone number or email")
	fe.Add("primaryPhoneNumber", "contact", "provide a phone number or email")
	fe.Add("emailAddress", "contact", "provide a phone number or email")

	require.Error(t, fe.Err())
	assert.Len(t, fe, 2)
	assert.Equal(t, []string{"emailAddress", "primaryPhoneNumber"}, fe.Fields())
	assert.Contains(t, fe.Error(), "emailAddress")

	var extracted FieldErrors
	require.ErrorAs(t, fmt.Errorf("step: %w", fe), &extracted)
	assert.Equal(t, fe, extracted)
}
