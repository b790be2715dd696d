package inference

import (
	"os"
	"runtime"
)

// SharedLibraryPath resolves the ONNX Runtime shared library for the current
// platform. The ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable takes
// precedence over the bundled third_party layout.
func SharedLibraryPath() string {
	if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
		return path
	}
	if runtime.GOOS == "windows" {
		return "./third_party/onnxruntime.dll"
	}
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.dylib"
		}
		return "./third_party/onnxruntime_amd64.dylib"
	}
	if runtime.GOARCH == "arm64" {
		return "./third_party/onnxruntime_arm64.so"
	}
	return "./third_party/onnxruntime.so"
}
