package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticProducesLimitFrames(t *testing.T) {
	s := NewSynthetic(5)
	defer s.Close()

	for i := 0; i < 5; i++ {
		frame, err := s.Next()
		require.NoError(t, err)
		bounds := frame.Bounds()
		assert.Equal(t, 640, bounds.Dx())
		assert.Equal(t, 480, bounds.Dy())
	}

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestSyntheticUnlimited(t *testing.T) {
	s := &Synthetic{Width: 8, Height: 8}
	defer s.Close()

	for i := 0; i < 300; i++ {
		_, err := s.Next()
		require.NoError(t, err)
	}
}

func TestSyntheticConsecutiveFramesDiffer(t *testing.T) {
	s := &Synthetic{Width: 16, Height: 16, Limit: 2}
	defer s.Close()

	a, err := s.Next()
	require.NoError(t, err)
	b, err := s.Next()
	require.NoError(t, err)

	assert.NotEqual(t, a.At(0, 0), b.At(0, 0), "gradient shifts between frames")
}
