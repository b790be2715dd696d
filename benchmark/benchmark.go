// Package benchmark - Functionality for measuring pipeline performance.
package benchmark

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/iondrive/smoosh/detector"
	"github.com/iondrive/smoosh/postprocess"
	"github.com/iondrive/smoosh/preprocess"
)

// Resolution represents source image dimensions for benchmarking.
type Resolution struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// CommonResolutions covers the input sizes the pipeline typically sees.
var CommonResolutions = []Resolution{
	{Width: 320, Height: 240, Name: "320x240"},
	{Width: 640, Height: 480, Name: "640x480"},
	{Width: 1280, Height: 720, Name: "1280x720"},
	{Width: 1920, Height: 1080, Name: "1920x1080"},
}

// Scenario defines a specific benchmark configuration.
type Scenario struct {
	Name       string     `json:"name"`
	Resolution Resolution `json:"resolution"`
	Iterations int        `json:"iterations"`
	WarmupRuns int        `json:"warmup_runs"`
}

// MemoryMetrics captures memory usage statistics.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
}

// PerformanceMetrics captures detailed performance data for one scenario.
type PerformanceMetrics struct {
	Scenario            Scenario      `json:"scenario"`
	Timestamp           time.Time     `json:"timestamp"`
	TotalDuration       time.Duration `json:"total_duration"`
	PreprocessDuration  time.Duration `json:"preprocess_duration"`
	InferenceDuration   time.Duration `json:"inference_duration"`
	PostProcessDuration time.Duration `json:"post_process_duration"`
	FramesPerSecond     float64       `json:"frames_per_second"`
	MemoryStats         MemoryMetrics `json:"memory_stats"`
	DetectionCount      int           `json:"detection_count"`
}

// Suite runs benchmark scenarios against an inference collaborator and
// collects per-stage timings.
type Suite struct {
	inferencer detector.Inferencer
	config     postprocess.Config
	outputDir  string
	results    []PerformanceMetrics
}

// NewSuite creates a benchmark suite. Results are saved under outputDir when
// Save is called.
func NewSuite(inferencer detector.Inferencer, config postprocess.Config, outputDir string) *Suite {
	return &Suite{
		inferencer: inferencer,
		config:     config,
		outputDir:  outputDir,
		results:    make([]PerformanceMetrics, 0),
	}
}

// DefaultScenarios returns one scenario per common resolution.
func DefaultScenarios(iterations, warmupRuns int) []Scenario {
	scenarios := make([]Scenario, 0, len(CommonResolutions))
	for _, res := range CommonResolutions {
		scenarios = append(scenarios, Scenario{
			Name:       fmt.Sprintf("person-detect-%s", res.Name),
			Resolution: res,
			Iterations: iterations,
			WarmupRuns: warmupRuns,
		})
	}
	return scenarios
}

// RunScenario executes a single benchmark scenario, timing each pipeline
// stage separately across the measured iterations.
//
// Arguments:
//   - scenario: The scenario to execute.
//
// Returns:
//   - *PerformanceMetrics: Aggregated timings and memory statistics.
//   - error: Any stage failure.
func (s *Suite) RunScenario(scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations <= 0 {
		return nil, fmt.Errorf("scenario %q needs a positive iteration count", scenario.Name)
	}

	img := syntheticFrame(scenario.Resolution.Width, scenario.Resolution.Height)
	pre := preprocess.NewPreprocessor(s.config.InputResolution)

	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := s.runOnce(pre, img, nil); err != nil {
			return nil, fmt.Errorf("warmup run %d failed: %w", i, err)
		}
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	start := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		if err := s.runOnce(pre, img, metrics); err != nil {
			return nil, fmt.Errorf("iteration %d failed: %w", i, err)
		}
	}
	metrics.TotalDuration = time.Since(start)
	metrics.FramesPerSecond = float64(scenario.Iterations) / metrics.TotalDuration.Seconds()
	metrics.MemoryStats = captureMemoryMetrics()

	s.results = append(s.results, *metrics)
	return metrics, nil
}

// runOnce drives every pipeline stage for one frame, accumulating per-stage
// durations into metrics when provided.
func (s *Suite) runOnce(pre *preprocess.Preprocessor, img image.Image, metrics *PerformanceMetrics) error {
	stageStart := time.Now()
	input, err := pre.Preprocess(img)
	if err != nil {
		return err
	}
	preprocessDone := time.Now()

	raw, err := s.inferencer.Infer(input)
	if err != nil {
		return err
	}
	inferenceDone := time.Now()

	bounds := img.Bounds()
	candidates, err := postprocess.Decode(raw, bounds.Dx(), bounds.Dy(), s.config)
	if err != nil {
		return err
	}
	kept := postprocess.ApplyGreedyNMS(candidates, s.config.IoUThreshold)
	postProcessDone := time.Now()

	if metrics != nil {
		metrics.PreprocessDuration += preprocessDone.Sub(stageStart)
		metrics.InferenceDuration += inferenceDone.Sub(preprocessDone)
		metrics.PostProcessDuration += postProcessDone.Sub(inferenceDone)
		metrics.DetectionCount += len(kept)
	}
	return nil
}

// Results returns all collected metrics.
func (s *Suite) Results() []PerformanceMetrics {
	return s.results
}

// Save writes the collected metrics to a timestamped JSON file under the
// suite's output directory.
func (s *Suite) Save() (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	path := filepath.Join(s.outputDir,
		fmt.Sprintf("benchmark-%s.json", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}
	return path, nil
}

// captureMemoryMetrics snapshots the Go runtime memory counters.
func captureMemoryMetrics() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryMetrics{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
	}
}

// syntheticFrame builds a gradient test frame so scenarios run without any
// image files on disk.
func syntheticFrame(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8(((x + y) * 255) / (width + height)),
				A: 255,
			})
		}
	}
	return img
}
