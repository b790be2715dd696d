// Package inference - ONNX Runtime session wiring for the detection pipeline.
package inference

import (
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/iondrive/smoosh/postprocess"
)

// Config describes an ONNX detection model session.
type Config struct {
	// ModelPath is the path to the .onnx model file.
	ModelPath string
	// InputResolution is the square input side; the input tensor has shape
	// (1, 3, S, S).
	InputResolution int
	// NumClasses is the number of class score rows in the model output.
	NumClasses int
	// NumCandidates is the number of box proposal columns in the model
	// output; the output tensor has shape (1, 4+NumClasses, NumCandidates).
	NumCandidates int
	// InputName and OutputName are the model's tensor names.
	InputName  string
	OutputName string
	// LibraryPath overrides the ONNX Runtime shared library location.
	// Empty selects the platform default (see SharedLibraryPath).
	LibraryPath string
	// IntraOpThreads and InterOpThreads control onnxruntime parallelism
	// within and across graph nodes. Zero uses the runtime default.
	IntraOpThreads int
	InterOpThreads int
}

// DefaultConfig returns the session configuration for a COCO-trained YOLOv8
// model exported at 640x640: input "images" (1, 3, 640, 640), output
// "output0" (1, 84, 8400).
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:       modelPath,
		InputResolution: 640,
		NumClasses:      80,
		NumCandidates:   8400,
		InputName:       "images",
		OutputName:      "output0",
		IntraOpThreads:  4,
		InterOpThreads:  2,
	}
}

// Session owns an ONNX Runtime session with pre-bound input and output
// tensors. It implements the pipeline's Inferencer contract.
//
// ONNX Runtime reuses the bound tensors across runs, so Infer serializes
// access behind a mutex; a single Session is safe for concurrent use, at the
// cost of queueing runs.
type Session struct {
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	attributes int
	candidates int
	mu         sync.Mutex
}

// NewSession loads a model and binds its input and output tensors.
//
// Arguments:
//   - config: The session configuration.
//
// Returns:
//   - *Session: The ready-to-run session. Close it when done.
//   - error: Library, model, or tensor setup failures.
func NewSession(config Config) (*Session, error) {
	libPath := config.LibraryPath
	if libPath == "" {
		libPath = SharedLibraryPath()
	}
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "error initializing ORT environment")
		}
	}

	inputShape := ort.NewShape(1, 3, int64(config.InputResolution), int64(config.InputResolution))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	attributes := 4 + config.NumClasses
	outputShape := ort.NewShape(1, int64(attributes), int64(config.NumCandidates))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if config.IntraOpThreads > 0 {
		options.SetIntraOpNumThreads(config.IntraOpThreads)
	}
	if config.InterOpThreads > 0 {
		options.SetInterOpNumThreads(config.InterOpThreads)
	}
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.OutputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		attributes: attributes,
		candidates: config.NumCandidates,
	}, nil
}

// Infer copies the normalized input buffer into the bound input tensor, runs
// the model, and returns a detached view of the output with the batch
// dimension stripped.
//
// Arguments:
//   - input: A channel-planar buffer of shape (1, 3, S, S).
//
// Returns:
//   - *postprocess.RawTensor: The raw output of shape (4+numClasses, numCandidates).
//   - error: Sizing mismatches, run failures, or a closed session.
func (s *Session) Infer(input []float32) (*postprocess.RawTensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.input == nil || s.output == nil {
		return nil, errors.New("session is closed")
	}

	data := s.input.GetData()
	if len(input) != len(data) {
		return nil, fmt.Errorf("input holds %d floats, the bound tensor needs %d (make sure it's the right shape)",
			len(input), len(data))
	}
	copy(data, input)

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference run failed")
	}

	// Detach from the reused output tensor so the decoder reads stable data
	// after the lock is released.
	out := s.output.GetData()
	buf := make([]float32, len(out))
	copy(buf, out)

	return postprocess.NewRawTensor(buf, s.attributes, s.candidates)
}

// Close releases the session and its bound tensors.
func (s *Session) Close() {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
