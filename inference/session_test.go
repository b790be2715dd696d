package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies the YOLOv8 session defaults.
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("model.onnx")
	assert.Equal(t, "model.onnx", config.ModelPath)
	assert.Equal(t, 640, config.InputResolution)
	assert.Equal(t, 80, config.NumClasses)
	assert.Equal(t, 8400, config.NumCandidates)
	assert.Equal(t, "images", config.InputName)
	assert.Equal(t, "output0", config.OutputName)
}

// TestInferAfterClose verifies a closed session rejects inference with an
// error instead of touching its released tensors.
func TestInferAfterClose(t *testing.T) {
	s := &Session{}
	s.Close()

	_, err := s.Infer(make([]float32, 3*640*640))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is closed")
}

// TestCloseIsIdempotent verifies Close tolerates repeated calls.
func TestCloseIsIdempotent(t *testing.T) {
	s := &Session{}
	s.Close()
	s.Close()
}
