// Command smoosh detects people in images with a YOLOv8 ONNX model, proposes
// regions of interest with classical detectors, and benchmarks the pipeline.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"gocv.io/x/gocv"

	"github.com/iondrive/smoosh/benchmark"
	"github.com/iondrive/smoosh/detector"
	"github.com/iondrive/smoosh/inference"
	"github.com/iondrive/smoosh/postprocess"
	"github.com/iondrive/smoosh/regions"
)

const (
	// DefaultModelPath is the YOLOv8 nano model exported for 640x640 input.
	DefaultModelPath = "yolov8n.onnx"
	// DefaultCascadePath is the Haar cascade for the face region method.
	DefaultCascadePath = "haarcascade_frontalface_default.xml"
)

func main() {
	var (
		modelPath    string
		cascadePath  string
		confidence   float64
		iou          float64
		outputPath   string
		regionMethod string
		largest      bool
		runBenchmark bool
	)
	flag.StringVar(&modelPath, "model", DefaultModelPath, "Path to YOLOv8 ONNX model file")
	flag.StringVar(&cascadePath, "cascade", DefaultCascadePath, "Path to Haar cascade file for -region face")
	flag.Float64Var(&confidence, "confidence", 0.25, "Detection confidence threshold")
	flag.Float64Var(&iou, "iou", 0.45, "Non-Maximum Suppression IoU threshold")
	flag.StringVar(&outputPath, "output", "", "Write a copy of the image with detections drawn")
	flag.StringVar(&regionMethod, "region", "", "Run a region-of-interest detector instead: edge, saliency, face")
	flag.BoolVar(&largest, "largest", false, "Report only the largest person")
	flag.BoolVar(&runBenchmark, "benchmark", false, "Run the pipeline benchmark suite and exit")
	flag.Parse()

	if runBenchmark {
		runBenchmarkSuite()
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("smoosh - person detection")
		fmt.Println("\nUsage: smoosh [flags] <image-path>")
		fmt.Println("\nExamples:")
		fmt.Println("  smoosh photo.jpg")
		fmt.Println("  smoosh -largest photo.jpg")
		fmt.Println("  smoosh -region edge photo.jpg")
		fmt.Println("  smoosh -output annotated.jpg photo.jpg")
		flag.PrintDefaults()
		return
	}
	imagePath := flag.Arg(0)

	if regionMethod != "" {
		runRegionDetection(imagePath, regionMethod, cascadePath)
		return
	}

	config := postprocess.DefaultConfig()
	config.ConfidenceThreshold = float32(confidence)
	config.IoUThreshold = float32(iou)

	session, err := inference.NewSession(inference.DefaultConfig(modelPath))
	if err != nil {
		log.Fatalf("failed to initialize inference session: %v", err)
	}
	defer session.Close()

	img, err := loadImage(imagePath)
	if err != nil {
		log.Fatalf("failed to load image: %v", err)
	}

	d := detector.New(session, config)

	if largest {
		box, err := d.DetectLargest(img)
		if err != nil {
			log.Fatalf("detection failed: %v", err)
		}
		fmt.Printf("Largest person: (%.0f, %.0f) %.0fx%.0f\n",
			box.X1, box.Y1, box.Width(), box.Height())
		return
	}

	detections, err := d.Detect(img)
	if err != nil {
		log.Fatalf("detection failed: %v", err)
	}

	if len(detections) == 0 {
		fmt.Println("No people detected.")
	} else {
		fmt.Printf("Found %d person(s):\n", len(detections))
		for i, det := range detections {
			fmt.Printf("  %d: %s\n", i+1, det)
		}
	}

	if outputPath != "" {
		if err := drawDetections(imagePath, outputPath, detections); err != nil {
			log.Fatalf("failed to write annotated image: %v", err)
		}
		log.Printf("annotated image written to %s", outputPath)
	}
}

// loadImage decodes an image file using the registered stdlib codecs.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// runRegionDetection runs one of the classical region detectors and prints
// the proposed rectangle.
func runRegionDetection(imagePath, methodName, cascadePath string) {
	method, err := regions.ParseMethod(methodName)
	if err != nil {
		log.Fatal(err)
	}

	d := &regions.Detector{CascadeFile: cascadePath}
	region, err := d.DetectRegion(imagePath, method)
	if err != nil {
		log.Fatalf("region detection failed: %v", err)
	}

	fmt.Printf("Region of interest (%s):\n", method)
	fmt.Printf("  Top-left corner: (%.0f, %.0f)\n", region.X1, region.Y1)
	fmt.Printf("  Dimensions: %.0fx%.0f\n", region.Width(), region.Height())
}

// runBenchmarkSuite measures the pipeline stages against the synthetic
// inferencer so no model file is required.
func runBenchmarkSuite() {
	suite := benchmark.NewSuite(benchmark.NewSyntheticInferencer(),
		postprocess.DefaultConfig(), "benchmark_results")

	for _, scenario := range benchmark.DefaultScenarios(20, 3) {
		metrics, err := suite.RunScenario(scenario)
		if err != nil {
			log.Fatalf("scenario %s failed: %v", scenario.Name, err)
		}
		log.Printf("%s: %.1f fps (preprocess %s, inference %s, postprocess %s)",
			scenario.Name, metrics.FramesPerSecond,
			metrics.PreprocessDuration, metrics.InferenceDuration,
			metrics.PostProcessDuration)
	}

	path, err := suite.Save()
	if err != nil {
		log.Fatalf("failed to save results: %v", err)
	}
	log.Printf("results written to %s", path)
}

// drawDetections writes a copy of the image with green boxes and confidence
// labels over every detection.
func drawDetections(imagePath, outputPath string, detections []postprocess.Detection) error {
	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		return fmt.Errorf("failed to load image: %s", imagePath)
	}
	defer mat.Close()

	green := color.RGBA{G: 255, A: 255}
	for i, det := range detections {
		rect := image.Rect(
			int(det.Box.X1), int(det.Box.Y1),
			int(det.Box.X2), int(det.Box.Y2),
		)
		gocv.Rectangle(&mat, rect, green, 2)

		label := fmt.Sprintf("Person %d: %.1f%%", i+1, det.Confidence*100)
		gocv.PutText(&mat, label, image.Pt(rect.Min.X, rect.Min.Y-10),
			gocv.FontHersheySimplex, 0.6, green, 2)
	}

	if ok := gocv.IMWrite(outputPath, mat); !ok {
		return fmt.Errorf("failed to write image: %s", outputPath)
	}
	return nil
}
