package benchmark

import "github.com/iondrive/smoosh/postprocess"

// SyntheticInferencer fabricates a YOLOv8-shaped output tensor with a fixed
// set of person candidates. It lets scenarios exercise the full decode and
// suppression path without a model file or the ONNX Runtime library.
type SyntheticInferencer struct {
	// InputResolution matches the pipeline configuration; planted boxes are
	// placed relative to it.
	InputResolution int
	// NumClasses and NumCandidates define the fabricated output shape.
	NumClasses    int
	NumCandidates int
}

// NewSyntheticInferencer returns an inferencer matching the default YOLOv8
// output contract: 80 classes, 8400 candidates, 640x640 input.
func NewSyntheticInferencer() *SyntheticInferencer {
	return &SyntheticInferencer{
		InputResolution: 640,
		NumClasses:      80,
		NumCandidates:   8400,
	}
}

// Infer ignores the input pixels and returns a tensor containing three
// overlapping person candidates and one low-confidence distractor, giving the
// suppression stage real work to do.
func (s *SyntheticInferencer) Infer(input []float32) (*postprocess.RawTensor, error) {
	attrs := 4 + s.NumClasses
	n := s.NumCandidates
	data := make([]float32, attrs*n)

	side := float32(s.InputResolution)
	plant := func(col int, cx, cy, w, h, confidence float32) {
		data[0*n+col] = cx * side
		data[1*n+col] = cy * side
		data[2*n+col] = w * side
		data[3*n+col] = h * side
		data[4*n+col] = confidence // class 0: person
	}

	plant(0, 0.5, 0.5, 0.2, 0.5, 0.91)
	plant(1, 0.51, 0.5, 0.2, 0.5, 0.64) // duplicate of the first
	plant(2, 0.15, 0.6, 0.1, 0.3, 0.55)
	plant(3, 0.8, 0.3, 0.05, 0.1, 0.10) // below the default threshold

	return postprocess.NewRawTensor(data, attrs, n)
}
