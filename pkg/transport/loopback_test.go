package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopback_ReadByte(t *testing.T) {
	l := NewLoopback()

	assert.False(t, l.Available())
	_, err := l.ReadByte()
	assert.ErrorIs(t, err, ErrNoData)

	l.Push(4, 9)
	assert.True(t, l.Available())

	b, err := l.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(4), b)

	b, err = l.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(9), b)

	assert.False(t, l.Available())
}

func TestLoopback_ReadToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple token", "1234x", "1234"},
		{"float token", "-1.5x", "-1.5"},
		{"empty token", "x", ""},
		{"missing delimiter returns partial", "123", "123"},
		{"stops at first delimiter", "12x34x", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoopback()
			l.PushString(tt.input)

			token, err := l.ReadToken('x')
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestLoopback_WriteLine(t *testing.T) {
	l := NewLoopback()

	assert.True(t, l.WriteReady())
	require.NoError(t, l.WriteLine("hello"))
	require.NoError(t, l.WriteLine("world"))

	assert.Equal(t, []string{"hello", "world"}, l.Lines())

	l.SetWriteReady(false)
	assert.False(t, l.WriteReady())
}

func TestLoopback_Reset(t *testing.T) {
	l := NewLoopback()
	l.Push(1, 2, 3)
	require.NoError(t, l.WriteLine("line"))

	l.Reset()

	assert.False(t, l.Available())
	assert.Empty(t, l.Lines())
}
