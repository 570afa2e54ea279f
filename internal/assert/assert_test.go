package assert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlwaysPanicsWithViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		var v *Violation
		require.True(t, errors.As(err, &v))
		require.Equal(t, "assert_test.go", v.File)
		require.Equal(t, "budget 7 exceeded", v.Msg)
		require.Contains(t, v.Error(), "assert_test.go:")
	}()
	Always(false, "budget %d exceeded", 7)
}

func TestAlwaysPasses(t *testing.T) {
	require.NotPanics(t, func() { Always(true, "unused") })
	require.NotPanics(t, func() { Check(true, "unused") })
}

func TestCheckMatchesBuild(t *testing.T) {
	if Enabled {
		require.Panics(t, func() { Check(false, "checked") })
	} else {
		require.NotPanics(t, func() { Check(false, "checked") })
	}
}
