// Package detector - person detection pipeline orchestration.
package detector

import (
	"image"

	"github.com/pkg/errors"

	"github.com/iondrive/smoosh/images"
	"github.com/iondrive/smoosh/postprocess"
	"github.com/iondrive/smoosh/preprocess"
)

// Inferencer is the external inference collaborator. Given a normalized
// channel-planar buffer of shape (1, 3, S, S) it returns the raw output
// tensor with the batch dimension already stripped.
//
// The pipeline never owns the underlying session handle; whether a single
// handle may be shared across goroutines is the implementation's contract.
// The bundled ONNX Runtime session serializes runs behind a lock, so one
// session is safe for concurrent Detect calls.
type Inferencer interface {
	Infer(input []float32) (*postprocess.RawTensor, error)
}

// Detector runs the full numeric pipeline: preprocessing, the external
// inference call, tensor decoding, and Non-Maximum Suppression.
//
// Every stage is a pure function over in-memory buffers and each Detect call
// allocates its own, so a Detector may be used from multiple goroutines as
// long as its Inferencer allows it.
type Detector struct {
	inferencer   Inferencer
	preprocessor *preprocess.Preprocessor
	config       postprocess.Config
}

// New creates a detection pipeline around an inference collaborator.
//
// Arguments:
//   - inferencer: The model session or stub producing raw output tensors.
//   - config: The pipeline configuration; zero thresholds are taken as given,
//     so pass postprocess.DefaultConfig() for the standard person setup.
//
// Returns:
//   - *Detector: The assembled pipeline.
func New(inferencer Inferencer, config postprocess.Config) *Detector {
	return &Detector{
		inferencer:   inferencer,
		preprocessor: preprocess.NewPreprocessor(config.InputResolution),
		config:       config,
	}
}

// Detect finds all people in the image.
//
// The result is deduplicated and ordered by descending confidence; it may be
// empty. Detect is deterministic for a fixed image and a fixed inference
// response.
//
// Arguments:
//   - img: The decoded input image.
//
// Returns:
//   - []postprocess.Detection: The surviving detections.
//   - error: An *preprocess.InvalidImageError for unusable input, a
//     *postprocess.MalformedTensorError for a model/decoder shape mismatch,
//     or a wrapped inference failure.
func (d *Detector) Detect(img image.Image) ([]postprocess.Detection, error) {
	input, err := d.preprocessor.Preprocess(img)
	if err != nil {
		return nil, err
	}

	raw, err := d.inferencer.Infer(input)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	bounds := img.Bounds()
	candidates, err := postprocess.Decode(raw, bounds.Dx(), bounds.Dy(), d.config)
	if err != nil {
		return nil, err
	}

	return postprocess.ApplyGreedyNMS(candidates, d.config.IoUThreshold), nil
}

// DetectLargest finds the person covering the largest area.
//
// When no detection survives, it returns a box covering the full input image
// as a deterministic fallback. Area ties are broken by the first detection
// encountered.
//
// Arguments:
//   - img: The decoded input image.
//
// Returns:
//   - images.Rect: The largest person box, or (0, 0, W, H) when none found.
//   - error: The same failures Detect surfaces.
func (d *Detector) DetectLargest(img image.Image) (images.Rect, error) {
	detections, err := d.Detect(img)
	if err != nil {
		return images.Rect{}, err
	}

	if len(detections) == 0 {
		bounds := img.Bounds()
		return images.Rect{
			X2: float32(bounds.Dx()),
			Y2: float32(bounds.Dy()),
		}, nil
	}

	largest := detections[0]
	for _, det := range detections[1:] {
		if det.Box.Area() > largest.Box.Area() {
			largest = det
		}
	}
	return largest.Box, nil
}
