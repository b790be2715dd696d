// Package postprocess - detection result types.
package postprocess

import (
	"fmt"

	"github.com/iondrive/smoosh/images"
)

// Detection is an immutable pairing of a bounding box in original-image pixel
// coordinates with its confidence score. Detections are created only by the
// decoder and consumed read-only downstream.
type Detection struct {
	// The bounding box of the detection.
	Box images.Rect
	// The confidence score of the detection, in [0, 1].
	Confidence float32
}

// String formats the detection for display.
//
// Returns:
//   - A string of the form "Person[bbox=(x,y,w,h), conf=0.NN]".
func (d Detection) String() string {
	return fmt.Sprintf("Person[bbox=(%.0f,%.0f,%.0f,%.0f), conf=%.2f]",
		d.Box.X1, d.Box.Y1, d.Box.Width(), d.Box.Height(), d.Confidence)
}
