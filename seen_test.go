package quadtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeen(t *testing.T) {
	var s Seen
	require.False(t, s.Has(0))

	s.Add(3)
	s.Add(1000)
	require.True(t, s.Has(3))
	require.True(t, s.Has(1000))
	require.False(t, s.Has(0))
	require.False(t, s.Has(999))
	require.False(t, s.Has(5000))

	s.Reset()
	require.False(t, s.Has(3))
	require.False(t, s.Has(1000))

	s.Add(0)
	require.True(t, s.Has(0))
}

func TestSeenWrap(t *testing.T) {
	var s Seen
	s.Add(5)
	s.gen = ^uint32(0)
	s.Add(6)
	s.Reset()
	require.Equal(t, uint32(1), s.gen)
	require.False(t, s.Has(5))
	require.False(t, s.Has(6))
}
