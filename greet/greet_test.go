package greet_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitzgen/kosmograd/greet"
)

func TestConsole_Hello_singular(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := greet.Console{Writer: &buf}

	err := console.Hello(greet.Target{N: 1, Name: "Jeena"})
	require.NoError(t, err)
	require.Equal(t, "Hello, 1 Jeena!\n", buf.String(),
		"count of exactly 1 should not take a plural suffix")
}

func TestConsole_Hello_plural(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		target greet.Target
		want   string
	}{
		{greet.Target{N: 10, Name: "Jeena"}, "Hello, 10 Jeenas!\n"},
		{greet.Target{N: 0, Name: "X"}, "Hello, 0 Xs!\n"},
		{greet.Target{N: -1, Name: "X"}, "Hello, -1 Xs!\n"},
	} {
		var buf bytes.Buffer
		console := greet.Console{Writer: &buf}

		err := console.Hello(tt.target)
		require.NoError(t, err)
		require.Equal(t, tt.want, buf.String(),
			"any count other than 1 takes the plural suffix")
	}
}

func TestConsole_Shadow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := greet.Console{Writer: &buf}

	err := console.Shadow()
	require.NoError(t, err)
	require.Equal(t, "s = 6\ns = 4\ns = 2\n", buf.String(),
		"bindings print innermost-first, then revert to the enclosing scope")
}

func TestConsole_Sum(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	console := greet.Console{Writer: &buf}

	err := console.Sum(5, 10)
	require.NoError(t, err)
	require.Equal(t, "5 + 10 = 15\n", buf.String())
}

func TestConsole_write_error(t *testing.T) {
	t.Parallel()

	console := greet.Console{Writer: errWriter{}}
	require.Error(t, console.Hello(greet.Target{N: 1, Name: "Jeena"}))
	require.Error(t, console.Shadow())
	require.Error(t, console.Sum(5, 10))
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}
