package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gate returns a step whose validity is controlled by *ok.
func gate(name string, optional bool, ok *bool) Step {
	return Step{
		Name:     name,
		Optional: optional,
		Validate: func() FieldErrors {
			if *ok {
				return nil
			}
			return FieldErrors{name: "is required"}
		},
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("empty")
	assert.Error(t, err)

	_, err = New("dup", Step{Name: "a"}, Step{Name: "a"})
	assert.ErrorContains(t, err, "duplicate step")

	_, err = New("unnamed", Step{})
	assert.ErrorContains(t, err, "step name is required")
}

func TestNext_RequiresValidation(t *testing.T) {
	valid := false
	w, err := New("test", gate("one", false, &valid), Step{Name: "two"})
	require.NoError(t, err)

	err = w.Next()
	assert.ErrorIs(t, err, ErrValidation)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "is required", fe["one"])
	assert.Equal(t, 0, w.Index())
	assert.False(t, w.Completed(0))

	valid = true
	require.NoError(t, w.Next())
	assert.Equal(t, 1, w.Index())
	assert.True(t, w.Completed(0))

	assert.ErrorIs(t, w.Next(), ErrLastStep)
}

func TestBack_NoGate(t *testing.T) {
	valid := true
	w, _ := New("test", Step{Name: "one"}, gate("two", false, &valid), Step{Name: "three"})
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())

	valid = false
	assert.True(t, w.Back())
	assert.True(t, w.Back())
	assert.False(t, w.Back())
	assert.Equal(t, 0, w.Index())
}

func TestCanEnter(t *testing.T) {
	aOK, bOK := true, true
	w, _ := New("test",
		gate("a", false, &aOK),
		gate("b", true, &bOK),
		Step{Name: "c"},
		Step{Name: "d"},
	)

	assert.True(t, w.CanEnter(0), "current step")
	assert.False(t, w.CanEnter(1), "a not complete")
	assert.False(t, w.CanEnter(-1))
	assert.False(t, w.CanEnter(4))
	assert.ErrorIs(t, w.GoTo(2), ErrNotEnterable)

	require.NoError(t, w.Next())
	assert.True(t, w.CanEnter(2), "optional b does not block")
	assert.False(t, w.CanEnter(3), "required c not complete")

	require.NoError(t, w.GoTo(2))
	require.NoError(t, w.GoTo(0))
	assert.True(t, w.CanEnter(2), "visited step stays enterable")

	// A failing step loses its completion; visited steps stay reachable.
	aOK = false
	assert.ErrorIs(t, w.Next(), ErrValidation)
	assert.False(t, w.Completed(0))
	assert.True(t, w.CanEnter(1))
	assert.True(t, w.CanEnter(2))
	assert.False(t, w.CanEnter(3))
}

func TestSkip(t *testing.T) {
	w, _ := New("test", Step{Name: "a", Optional: true}, Step{Name: "b"}, Step{Name: "c"})

	require.NoError(t, w.Skip())
	assert.Equal(t, 1, w.Index())
	assert.False(t, w.Completed(0))
	assert.Error(t, w.Skip(), "required step cannot be skipped")
}

func TestSubmit(t *testing.T) {
	lastOK := false
	w, _ := New("test", Step{Name: "a"}, Step{Name: "b", Optional: true}, gate("c", false, &lastOK))

	assert.ErrorIs(t, w.Submit(), ErrNotLastStep)

	require.NoError(t, w.Next())
	require.NoError(t, w.Skip())
	assert.ErrorIs(t, w.Submit(), ErrValidation)
	assert.False(t, w.Submitted())

	lastOK = true
	require.NoError(t, w.Submit())
	assert.True(t, w.Submitted())
	assert.ErrorIs(t, w.Submit(), ErrSubmitted)
}

func TestSubmit_RequiresEarlierSteps(t *testing.T) {
	aOK := true
	w, _ := New("test", gate("a", false, &aOK), Step{Name: "b"})
	require.NoError(t, w.Next())

	aOK = false
	require.NoError(t, w.GoTo(0))
	assert.ErrorIs(t, w.Next(), ErrValidation)
	require.NoError(t, w.GoTo(1))

	err := w.Submit()
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.ErrorContains(t, err, "a")
}

func TestProgress(t *testing.T) {
	w, _ := New("test", Step{Name: "a"}, Step{Name: "b"}, Step{Name: "c"}, Step{Name: "d"})

	cur, total, pct := w.Progress()
	assert.Equal(t, []int{0, 4, 0}, []int{cur, total, pct})

	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	cur, total, pct = w.Progress()
	assert.Equal(t, []int{2, 4, 50}, []int{cur, total, pct})
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"email": "must be a valid email address", "bio": "must be at most 1000 characters"}

	assert.Equal(t, "invalid fields: bio: must be at most 1000 characters; email: must be a valid email address", fe.Error())
	assert.True(t, errors.Is(fe, ErrValidation))
}
