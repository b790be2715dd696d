// Package preprocess - image-to-tensor conversion for the detection pipeline.
package preprocess

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// channels is the number of color planes the network consumes.
const channels = 3

// InvalidImageError reports an input image the preprocessor cannot work
// with: nil, or with a zero dimension. It is surfaced to the caller and
// never recovered internally.
type InvalidImageError struct {
	Width  int
	Height int
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid input image dimensions: %dx%d", e.Width, e.Height)
}

// Preprocessor converts decoded images into the normalized channel-planar
// float32 layout the inference collaborator requires.
//
// The conversion is a plain stretch resize to the square input resolution.
// It deliberately does NOT letterbox: the decoder rescales boxes back by the
// same independent per-axis factors, so switching to an aspect-preserving
// resize here would shift every decoded coordinate.
type Preprocessor struct {
	inputResolution int
}

// NewPreprocessor creates a preprocessor for the given square input
// resolution (e.g. 640 for a 640x640 model input).
func NewPreprocessor(inputResolution int) *Preprocessor {
	return &Preprocessor{inputResolution: inputResolution}
}

// TensorSize returns the length of the flat input buffer, 3*S*S for tensor
// shape (1, 3, S, S).
func (p *Preprocessor) TensorSize() int {
	return channels * p.inputResolution * p.inputResolution
}

// Preprocess converts an image into a freshly allocated normalized tensor
// buffer.
//
// Arguments:
//   - img: The decoded input image.
//
// Returns:
//   - []float32: A buffer of length 3*S*S in channel-planar order (all red
//     samples, then green, then blue), every value in [0, 1].
//   - error: An *InvalidImageError for nil or zero-dimension input.
func (p *Preprocessor) Preprocess(img image.Image) ([]float32, error) {
	dst := make([]float32, p.TensorSize())
	if err := p.PreprocessInto(img, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// PreprocessInto converts an image into an existing buffer, typically the
// backing data of a pre-bound input tensor.
//
// Arguments:
//   - img: The decoded input image.
//   - dst: The destination buffer, at least TensorSize() long.
//
// Returns:
//   - error: An *InvalidImageError for nil or zero-dimension input, or a
//     sizing error when dst is too small.
func (p *Preprocessor) PreprocessInto(img image.Image, dst []float32) error {
	if img == nil {
		return &InvalidImageError{}
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return &InvalidImageError{Width: bounds.Dx(), Height: bounds.Dy()}
	}

	side := p.inputResolution
	channelSize := side * side
	if len(dst) < channels*channelSize {
		return errors.Errorf("destination buffer holds %d floats, needs %d (make sure it's the right shape)",
			len(dst), channels*channelSize)
	}

	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	// Stretch resize to side x side with bilinear interpolation. No aspect
	// ratio preservation.
	resized := resize.Resize(uint(side), uint(side), img, resize.Bilinear)

	i := 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
