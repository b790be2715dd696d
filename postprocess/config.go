// Package postprocess - pipeline configuration.
package postprocess

// Config holds the recognized options of the detection pipeline. It is an
// in-memory struct, immutable once handed to the pipeline.
type Config struct {
	// InputResolution is the square model input side in pixels.
	InputResolution int `json:"input_resolution" yaml:"input_resolution"`
	// ConfidenceThreshold is the minimum class score required for a
	// candidate box to be kept.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// IoUThreshold is the Non-Maximum Suppression threshold defining the
	// maximum allowed Intersection over Union between two kept boxes.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// TargetClassIndex selects the class of interest. Class 0 is "person"
	// in the COCO dataset.
	TargetClassIndex int `json:"target_class_index" yaml:"target_class_index"`
}

// DefaultConfig returns the pipeline configuration used for COCO-trained
// YOLOv8 person detection:
//   - Input Resolution: 640
//   - Confidence Threshold: 0.25
//   - IoU Threshold: 0.45
//   - Target Class: 0 (person)
func DefaultConfig() Config {
	return Config{
		InputResolution:     640,
		ConfidenceThreshold: 0.25,
		IoUThreshold:        0.45,
		TargetClassIndex:    0,
	}
}
