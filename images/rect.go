// Package images - Geometry primitives shared by the detection pipeline.
package images

import "github.com/chewxy/math32"

// Rect is a lightweight bounding box in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the rectangle in pixels.
func (r Rect) Area() float32 {
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle has no interior. A rectangle with zero
// or negative width or height is degenerate and must be dropped before
// suppression.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// CalculateIoU computes the Intersection over Union of two rectangles.
//
// IoU is the ratio of the overlapping area to the combined area of the two
// boxes:
//
//	IoU = Area of Intersection / Area of Union
//
//	- A value of 1.0 means the rectangles are identical.
//	- A value of 0.0 means the rectangles do not overlap at all.
//
// Non-Maximum Suppression uses this score to decide whether two boxes are
// duplicates of the same object.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
func CalculateIoU(r, o Rect) float32 {
	// The intersection is the overlapping area of the two rectangles. Its
	// coordinates are found by taking the maximum of the starting coordinates
	// and the minimum of the ending coordinates.
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	// If either dimension of the intersection is zero or negative, the
	// rectangles do not overlap and the score is 0.
	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B).
	unionArea := r.Area() + o.Area() - interArea

	return interArea / unionArea
}
