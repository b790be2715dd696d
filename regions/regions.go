// Package regions - classical region-of-interest detectors.
//
// These detectors are independent of the neural pipeline: they propose a
// single region of interest from edges, saliency, or frontal faces, and fall
// back to the full image when nothing stands out.
package regions

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/iondrive/smoosh/images"
)

// Method selects the region detection strategy.
type Method string

const (
	// MethodEdge finds the largest contour of a Canny edge map.
	MethodEdge Method = "edge"
	// MethodSaliency finds the largest contour of a thresholded Laplacian
	// response, computed on a downscaled copy for speed.
	MethodSaliency Method = "saliency"
	// MethodFace finds the largest frontal face via a Haar cascade.
	MethodFace Method = "face"
)

// ParseMethod converts a user-supplied string into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case MethodEdge:
		return MethodEdge, nil
	case MethodSaliency:
		return MethodSaliency, nil
	case MethodFace:
		return MethodFace, nil
	default:
		return "", fmt.Errorf("invalid region detection method %q (valid: edge, saliency, face)", s)
	}
}

// saliency working resolution; larger inputs are downscaled before the
// Laplacian pass and the resulting region is scaled back up.
const (
	saliencyMaxWidth  = 640
	saliencyMaxHeight = 480
)

// Detector proposes regions of interest from a single image.
type Detector struct {
	// CascadeFile is the Haar cascade used by MethodFace, e.g.
	// haarcascade_frontalface_default.xml.
	CascadeFile string
}

// DetectRegion loads an image and proposes a region of interest using the
// given method.
//
// Arguments:
//   - imagePath: Path to the image file.
//   - method: The detection strategy.
//
// Returns:
//   - images.Rect: The proposed region, or the full image when the method
//     finds nothing.
//   - error: Load or cascade failures.
func (d *Detector) DetectRegion(imagePath string, method Method) (images.Rect, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return images.Rect{}, errors.Errorf("failed to load image: %s", imagePath)
	}
	defer img.Close()

	switch method {
	case MethodEdge:
		return d.detectUsingEdges(img), nil
	case MethodSaliency:
		return d.detectUsingSaliency(img), nil
	case MethodFace:
		return d.detectUsingFace(img)
	default:
		return images.Rect{}, errors.Errorf("unsupported region detection method: %s", method)
	}
}

// fullImage returns a rectangle covering the whole Mat.
func fullImage(img gocv.Mat) images.Rect {
	return images.Rect{X2: float32(img.Cols()), Y2: float32(img.Rows())}
}

// largestContourRect returns the bounding rectangle of the largest-area
// contour, or false when the contour set is empty.
func largestContourRect(contours gocv.PointsVector) (image.Rectangle, bool) {
	if contours.Size() == 0 {
		return image.Rectangle{}, false
	}

	largest := 0
	maxArea := gocv.ContourArea(contours.At(0))
	for i := 1; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > maxArea {
			maxArea = area
			largest = i
		}
	}
	return gocv.BoundingRect(contours.At(largest)), true
}

func (d *Detector) detectUsingEdges(img gocv.Mat) images.Rect {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	rect, ok := largestContourRect(contours)
	if !ok {
		return fullImage(img)
	}
	return images.Rect{
		X1: float32(rect.Min.X),
		Y1: float32(rect.Min.Y),
		X2: float32(rect.Max.X),
		Y2: float32(rect.Max.Y),
	}
}

func (d *Detector) detectUsingSaliency(img gocv.Mat) images.Rect {
	// Work on a downscaled copy when the input is large.
	scaleX := float32(saliencyMaxWidth) / float32(img.Cols())
	scaleY := float32(saliencyMaxHeight) / float32(img.Rows())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	working := img
	if scale < 1.0 {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(img, &resized, image.Pt(
			int(float32(img.Cols())*scale),
			int(float32(img.Rows())*scale),
		), 0, 0, gocv.InterpolationLinear)
		working = resized
	} else {
		scale = 1.0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(working, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(9, 9), 0, 0, gocv.BorderDefault)

	floatGray := gocv.NewMat()
	defer floatGray.Close()
	blurred.ConvertTo(&floatGray, gocv.MatTypeCV32F)

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(floatGray, &laplacian, gocv.MatTypeCV32F, 1, 1, 0, gocv.BorderDefault)

	absResponse := gocv.NewMat()
	defer absResponse.Close()
	gocv.ConvertScaleAbs(laplacian, &absResponse, 1, 0)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(absResponse, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	rect, ok := largestContourRect(contours)
	if !ok {
		return fullImage(img)
	}

	// Map back to the original resolution.
	return images.Rect{
		X1: float32(rect.Min.X) / scale,
		Y1: float32(rect.Min.Y) / scale,
		X2: float32(rect.Max.X) / scale,
		Y2: float32(rect.Max.Y) / scale,
	}
}

func (d *Detector) detectUsingFace(img gocv.Mat) (images.Rect, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	gocv.EqualizeHist(gray, &gray)

	classifier := gocv.NewCascadeClassifier()
	defer classifier.Close()
	if !classifier.Load(d.CascadeFile) {
		return images.Rect{}, errors.Errorf("failed to load Haar cascade classifier: %s", d.CascadeFile)
	}

	faces := classifier.DetectMultiScale(gray)
	if len(faces) == 0 {
		return fullImage(img), nil
	}

	largest := faces[0]
	maxArea := largest.Dx() * largest.Dy()
	for _, face := range faces[1:] {
		if area := face.Dx() * face.Dy(); area > maxArea {
			maxArea = area
			largest = face
		}
	}

	return images.Rect{
		X1: float32(largest.Min.X),
		Y1: float32(largest.Min.Y),
		X2: float32(largest.Max.X),
		Y2: float32(largest.Max.Y),
	}, nil
}
