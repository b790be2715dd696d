// Package postprocess - raw output tensor decoding.
package postprocess

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/iondrive/smoosh/images"
)

// Decode converts a raw output tensor into detections of the target class in
// original-image pixel coordinates.
//
// For every candidate column the decoder reads the box geometry from rows
// 0..3, finds the class row with the maximum score (the lowest class index
// wins ties), and keeps the candidate only when the winning class is the
// target class and its score meets the confidence threshold. Surviving boxes
// are converted from center form to corner form, rescaled from model input
// space to original image space independently per axis (matching the stretch
// resize used in preprocessing, with no aspect correction), and clamped to
// the image bounds. Candidates whose clamped width or height is not positive
// are dropped silently; that is normal filtering, not a failure.
//
// The order of the returned slice is unspecified; callers must not depend
// on it.
//
// Arguments:
//   - t: The raw output tensor with the batch dimension stripped.
//   - origWidth: The original image width in pixels.
//   - origHeight: The original image height in pixels.
//   - config: The pipeline configuration.
//
// Returns:
//   - []Detection: The surviving candidates, possibly empty.
//   - error: A *MalformedTensorError when the tensor does not cover the
//     configured target class.
func Decode(t *RawTensor, origWidth, origHeight int, config Config) ([]Detection, error) {
	if config.TargetClassIndex < 0 || config.TargetClassIndex >= t.Classes() {
		return nil, &MalformedTensorError{
			Attributes: t.Attributes(),
			Candidates: t.Candidates(),
			Length:     len(t.data),
			Reason: fmt.Sprintf("target class %d outside the %d class rows",
				config.TargetClassIndex, t.Classes()),
		}
	}

	xScale := float32(origWidth) / float32(config.InputResolution)
	yScale := float32(origHeight) / float32(config.InputResolution)

	detections := make([]Detection, 0, 16)

	for i := 0; i < t.Candidates(); i++ {
		// Stable argmax over the class rows: a strictly greater score is
		// required to displace the current winner, so the lowest class
		// index wins ties.
		maxClass := 0
		maxConf := t.At(boxAttributes, i)
		for c := 1; c < t.Classes(); c++ {
			if conf := t.At(boxAttributes+c, i); conf > maxConf {
				maxConf = conf
				maxClass = c
			}
		}

		if maxClass != config.TargetClassIndex || maxConf < config.ConfidenceThreshold {
			continue
		}

		// Box geometry is center-form in input-resolution units.
		cx := t.At(0, i)
		cy := t.At(1, i)
		w := t.At(2, i)
		h := t.At(3, i)

		x1 := (cx - w/2) * xScale
		y1 := (cy - h/2) * yScale
		x2 := (cx + w/2) * xScale
		y2 := (cy + h/2) * yScale

		x1 = math32.Max(0, x1)
		y1 = math32.Max(0, y1)
		width := math32.Min(x2-x1, float32(origWidth))
		height := math32.Min(y2-y1, float32(origHeight))

		if width <= 0 || height <= 0 {
			continue
		}

		detections = append(detections, Detection{
			Box: images.Rect{
				X1: x1,
				Y1: y1,
				X2: x1 + width,
				Y2: y1 + height,
			},
			Confidence: maxConf,
		})
	}

	return detections, nil
}
