package temporal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDial_Disabled(t *testing.T) {
	c, err := Dial(ClientConfig{Disabled: true}, nil, nil)
	require.ErrorIs(t, err, ErrDisabled)
	require.Nil(t, c)
}
