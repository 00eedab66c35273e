package farewell_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitzgen/kosmograd/farewell"
)

func TestFunc_call(t *testing.T) {
	t.Parallel()

	var called int
	f := farewell.Func(func(context.Context) error {
		called++
		return nil
	})

	require.NoError(t, f.Call(context.TODO()))
	require.Equal(t, 1, called, "the collaborator should be invoked exactly once")
}

func TestFunc_nil(t *testing.T) {
	t.Parallel()

	var f farewell.Func
	err := f.Call(context.TODO())
	require.ErrorIs(t, err, farewell.ErrNotBound,
		"a nil collaborator is a detectable wiring error")
}
