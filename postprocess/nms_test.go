package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iondrive/smoosh/images"
)

// TestGreedyNMSSuppressesDuplicates verifies that of two candidates with
// identical geometry only the higher-confidence one survives.
func TestGreedyNMSSuppressesDuplicates(t *testing.T) {
	box := images.Rect{X1: 100, Y1: 100, X2: 200, Y2: 300}
	detections := []Detection{
		{Box: box, Confidence: 0.6},
		{Box: box, Confidence: 0.9},
	}

	kept := ApplyGreedyNMS(detections, 0.45)

	require.Len(t, kept, 1, "identical boxes have IoU 1.0 and must collapse to one")
	assert.Equal(t, float32(0.9), kept[0].Confidence,
		"the higher-confidence duplicate wins")
}

// TestGreedyNMSKeepsDisjointBoxes verifies that non-overlapping detections
// all survive, ordered by descending confidence.
func TestGreedyNMSKeepsDisjointBoxes(t *testing.T) {
	detections := []Detection{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.5},
		{Box: images.Rect{X1: 300, Y1: 300, X2: 400, Y2: 400}, Confidence: 0.95},
		{Box: images.Rect{X1: 100, Y1: 100, X2: 150, Y2: 150}, Confidence: 0.7},
	}

	kept := ApplyGreedyNMS(detections, 0.45)

	require.Len(t, kept, 3)
	assert.Equal(t, float32(0.95), kept[0].Confidence)
	assert.Equal(t, float32(0.7), kept[1].Confidence)
	assert.Equal(t, float32(0.5), kept[2].Confidence)
}

// TestGreedyNMSPairwiseInvariant verifies that no two surviving detections
// overlap beyond the IoU threshold.
func TestGreedyNMSPairwiseInvariant(t *testing.T) {
	// A cluster of shifted boxes around (100,100) plus one distant box.
	detections := []Detection{
		{Box: images.Rect{X1: 100, Y1: 100, X2: 200, Y2: 200}, Confidence: 0.9},
		{Box: images.Rect{X1: 110, Y1: 110, X2: 210, Y2: 210}, Confidence: 0.8},
		{Box: images.Rect{X1: 120, Y1: 120, X2: 220, Y2: 220}, Confidence: 0.7},
		{Box: images.Rect{X1: 105, Y1: 95, X2: 205, Y2: 195}, Confidence: 0.6},
		{Box: images.Rect{X1: 400, Y1: 400, X2: 500, Y2: 500}, Confidence: 0.5},
	}

	const threshold = 0.45
	kept := ApplyGreedyNMS(detections, threshold)

	require.NotEmpty(t, kept)
	for i := 0; i < len(kept); i++ {
		for j := i + 1; j < len(kept); j++ {
			iou := images.CalculateIoU(kept[i].Box, kept[j].Box)
			assert.LessOrEqual(t, iou, float32(threshold),
				"kept detections %d and %d overlap beyond the threshold", i, j)
		}
	}
}

// TestGreedyNMSDoesNotMutateInput verifies that suppression is a pure
// function of its input slice.
func TestGreedyNMSDoesNotMutateInput(t *testing.T) {
	detections := []Detection{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.5},
		{Box: images.Rect{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.9},
	}
	original := make([]Detection, len(detections))
	copy(original, detections)

	ApplyGreedyNMS(detections, 0.45)

	assert.Equal(t, original, detections, "the input slice must stay untouched")
}

// TestGreedyNMSDeterministicTieOrder verifies that equal-confidence
// detections keep their original relative order.
func TestGreedyNMSDeterministicTieOrder(t *testing.T) {
	first := Detection{Box: images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.8}
	second := Detection{Box: images.Rect{X1: 500, Y1: 500, X2: 510, Y2: 510}, Confidence: 0.8}

	kept := ApplyGreedyNMS([]Detection{first, second}, 0.45)

	require.Len(t, kept, 2)
	assert.Equal(t, first, kept[0], "stable sort keeps the earlier detection first")
	assert.Equal(t, second, kept[1])
}

// TestGreedyNMSEmptyInput verifies the empty-input edge case.
func TestGreedyNMSEmptyInput(t *testing.T) {
	assert.Nil(t, ApplyGreedyNMS(nil, 0.45))
	assert.Nil(t, ApplyGreedyNMS([]Detection{}, 0.45))
}
