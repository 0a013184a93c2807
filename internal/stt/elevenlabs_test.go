package stt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewElevenLabsAdapterName(t *testing.T) {
	a := NewElevenLabsAdapter("sk_test")
	require.Equal(t, "ElevenLabs Scribe", a.Name())
}
