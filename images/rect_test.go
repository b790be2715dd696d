package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCalculateIoU verifies the IoU score across overlapping, disjoint, and
// identical rectangle pairs.
func TestCalculateIoU(t *testing.T) {
	tests := []struct {
		name     string
		a        Rect
		b        Rect
		expected float32
	}{
		{
			name: "partial overlap",
			a:    Rect{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    Rect{X1: 5, Y1: 5, X2: 15, Y2: 15},
			// Intersection is a 5x5 box (area 25), union is 100 + 100 - 25.
			expected: 25.0 / 175.0,
		},
		{
			name:     "identical rectangles",
			a:        Rect{X1: 10, Y1: 20, X2: 110, Y2: 220},
			b:        Rect{X1: 10, Y1: 20, X2: 110, Y2: 220},
			expected: 1.0,
		},
		{
			name:     "disjoint rectangles",
			a:        Rect{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:        Rect{X1: 20, Y1: 20, X2: 30, Y2: 30},
			expected: 0.0,
		},
		{
			name:     "touching edges do not overlap",
			a:        Rect{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:        Rect{X1: 10, Y1: 0, X2: 20, Y2: 10},
			expected: 0.0,
		},
		{
			name:     "contained rectangle",
			a:        Rect{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b:        Rect{X1: 25, Y1: 25, X2: 75, Y2: 75},
			expected: 2500.0 / 10000.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateIoU(tt.a, tt.b), 1e-6,
				"IoU score should match the analytic value")
			assert.InDelta(t, tt.expected, CalculateIoU(tt.b, tt.a), 1e-6,
				"IoU should be symmetric")
		})
	}
}

// TestRectEmpty verifies degenerate rectangle detection.
func TestRectEmpty(t *testing.T) {
	assert.True(t, Rect{X1: 10, Y1: 10, X2: 10, Y2: 20}.Empty(),
		"zero width rectangle should be empty")
	assert.True(t, Rect{X1: 10, Y1: 10, X2: 20, Y2: 10}.Empty(),
		"zero height rectangle should be empty")
	assert.True(t, Rect{X1: 20, Y1: 20, X2: 10, Y2: 10}.Empty(),
		"inverted rectangle should be empty")
	assert.False(t, Rect{X1: 0, Y1: 0, X2: 1, Y2: 1}.Empty(),
		"unit rectangle should not be empty")
}

// TestRectDimensions verifies width, height, and area accessors.
func TestRectDimensions(t *testing.T) {
	r := Rect{X1: 270, Y1: 220, X2: 370, Y2: 420}
	assert.Equal(t, float32(100), r.Width())
	assert.Equal(t, float32(200), r.Height())
	assert.Equal(t, float32(20000), r.Area())
}
