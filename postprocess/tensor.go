// Package postprocess - decoding and suppression of raw detector outputs.
package postprocess

import "fmt"

// boxAttributes is the number of leading rows holding box geometry
// (center-x, center-y, width, height).
const boxAttributes = 4

// MalformedTensorError reports an inference output whose shape does not match
// the (4+numClasses, numCandidates) layout the decoder expects. It indicates a
// mismatched model/decoder contract and is never silently coerced.
type MalformedTensorError struct {
	// Attributes and Candidates describe the shape the caller claimed.
	Attributes int
	Candidates int
	// Length is the actual number of elements in the buffer.
	Length int
	// Reason carries extra context about which check failed.
	Reason string
}

func (e *MalformedTensorError) Error() string {
	return fmt.Sprintf("malformed output tensor: shape (%d, %d) with %d elements: %s",
		e.Attributes, e.Candidates, e.Length, e.Reason)
}

// RawTensor is a dense 2-D view over a flat inference output buffer with
// shape (numAttributes, numCandidates). Rows 0..3 hold box geometry in
// model-input-resolution units; rows 4..numAttributes-1 hold per-class
// confidence scores aligned by candidate column. This is the external
// contract with the inference collaborator.
//
// The flat buffer with explicit row/column strides replaces any
// array-of-arrays access pattern: the shape is fixed, so locality wins.
type RawTensor struct {
	data       []float32
	attributes int
	candidates int
}

// NewRawTensor wraps a flat float32 buffer as a (attributes, candidates)
// tensor. The batch dimension must already be stripped by the caller.
//
// Arguments:
//   - data: The flat output buffer in row-major order.
//   - attributes: The number of rows, which must be 4 + numClasses.
//   - candidates: The number of columns (box proposals).
//
// Returns:
//   - *RawTensor: The tensor view.
//   - error: A *MalformedTensorError if the shape is inconsistent.
func NewRawTensor(data []float32, attributes, candidates int) (*RawTensor, error) {
	if attributes <= boxAttributes {
		return nil, &MalformedTensorError{
			Attributes: attributes,
			Candidates: candidates,
			Length:     len(data),
			Reason:     fmt.Sprintf("need at least %d attribute rows (4 box rows + 1 class row)", boxAttributes+1),
		}
	}
	if candidates <= 0 {
		return nil, &MalformedTensorError{
			Attributes: attributes,
			Candidates: candidates,
			Length:     len(data),
			Reason:     "candidate count must be positive",
		}
	}
	if len(data) != attributes*candidates {
		return nil, &MalformedTensorError{
			Attributes: attributes,
			Candidates: candidates,
			Length:     len(data),
			Reason:     fmt.Sprintf("expected %d elements", attributes*candidates),
		}
	}
	return &RawTensor{data: data, attributes: attributes, candidates: candidates}, nil
}

// At returns the value at the given attribute row and candidate column.
func (t *RawTensor) At(row, col int) float32 {
	return t.data[row*t.candidates+col]
}

// Attributes returns the number of rows (4 + numClasses).
func (t *RawTensor) Attributes() int {
	return t.attributes
}

// Candidates returns the number of box proposal columns.
func (t *RawTensor) Candidates() int {
	return t.candidates
}

// Classes returns the number of per-class score rows.
func (t *RawTensor) Classes() int {
	return t.attributes - boxAttributes
}
