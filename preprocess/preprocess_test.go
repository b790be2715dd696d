package preprocess

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformImage builds a solid-color RGBA test image.
func uniformImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// TestPreprocessRejectsInvalidImages verifies the InvalidImageError path for
// nil and zero-dimension input.
func TestPreprocessRejectsInvalidImages(t *testing.T) {
	p := NewPreprocessor(640)

	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "nil image", img: nil},
		{name: "zero width", img: image.NewRGBA(image.Rect(0, 0, 0, 480))},
		{name: "zero height", img: image.NewRGBA(image.Rect(0, 0, 640, 0))},
		{name: "zero both", img: image.NewRGBA(image.Rect(0, 0, 0, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preprocess(tt.img)
			require.Error(t, err)

			var invalid *InvalidImageError
			assert.True(t, errors.As(err, &invalid),
				"unusable input must surface as InvalidImageError")
		})
	}
}

// TestPreprocessTensorLayout verifies the channel-planar layout and the
// [0,1] normalization using a solid-color image, which is invariant under
// resizing.
func TestPreprocessTensorLayout(t *testing.T) {
	const side = 64
	p := NewPreprocessor(side)

	// Solid orange: full red, half green, no blue.
	img := uniformImage(100, 80, color.RGBA{R: 255, G: 128, B: 0, A: 255})

	tensor, err := p.Preprocess(img)
	require.NoError(t, err)
	require.Len(t, tensor, 3*side*side, "buffer must cover shape (1, 3, S, S)")

	channelSize := side * side
	for i := 0; i < channelSize; i++ {
		assert.InDelta(t, 1.0, tensor[i], 1e-3,
			"red plane sample %d", i)
		assert.InDelta(t, 128.0/255.0, tensor[channelSize+i], 1e-2,
			"green plane sample %d", i)
		assert.InDelta(t, 0.0, tensor[2*channelSize+i], 1e-3,
			"blue plane sample %d", i)
	}
}

// TestPreprocessNormalizationRange verifies every output sample stays in
// [0,1] for an arbitrary gradient image.
func TestPreprocessNormalizationRange(t *testing.T) {
	const side = 32
	p := NewPreprocessor(side)

	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	tensor, err := p.Preprocess(img)
	require.NoError(t, err)

	for i, v := range tensor {
		require.GreaterOrEqual(t, v, float32(0), "sample %d below range", i)
		require.LessOrEqual(t, v, float32(1), "sample %d above range", i)
	}
}

// TestPreprocessIntoRejectsShortBuffer verifies the destination sizing check
// used when writing straight into a pre-bound input tensor.
func TestPreprocessIntoRejectsShortBuffer(t *testing.T) {
	p := NewPreprocessor(640)
	img := uniformImage(10, 10, color.RGBA{A: 255})

	err := p.PreprocessInto(img, make([]float32, 10))
	require.Error(t, err)

	var invalid *InvalidImageError
	assert.False(t, errors.As(err, &invalid),
		"a short buffer is a caller bug, not an invalid image")
}

// TestPreprocessIsDeterministic verifies two runs over the same image produce
// identical tensors.
func TestPreprocessIsDeterministic(t *testing.T) {
	const side = 32
	p := NewPreprocessor(side)
	img := uniformImage(77, 41, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	first, err := p.Preprocess(img)
	require.NoError(t, err)
	second, err := p.Preprocess(img)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
