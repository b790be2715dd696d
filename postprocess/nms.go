// Package postprocess - Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/iondrive/smoosh/images"
)

// ApplyGreedyNMS performs classic greedy Non-Maximum Suppression.
//
// Detections are visited in order of descending confidence (ties broken by
// original index, so the pass is deterministic). A detection is kept only if
// its IoU with every already-kept detection stays at or below the threshold;
// otherwise it is discarded as a duplicate of a higher-confidence box.
//
// The scan is O(n²) in the number of candidates, which is acceptable because
// confidence filtering leaves tens of boxes, not thousands.
//
// The input slice is not mutated; the function is pure.
//
// Arguments:
//   - detections: Unordered candidate detections of a single class.
//   - iouThreshold: Maximum allowed IoU between two kept boxes.
//
// Returns:
//   - The deduplicated detections in descending confidence order.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32) []Detection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	sorted := make([]Detection, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, n)

	for _, candidate := range sorted {
		duplicate := false
		for _, anchor := range kept {
			if images.CalculateIoU(candidate.Box, anchor.Box) > iouThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	return kept
}
