package volumiwled

import (
	"fmt"
	"math"
)

// RenderProgress generates a bar lit from LED 0 up to the fraction of the
// track that has been played. duration must be positive.
func RenderProgress(elapsed float64, duration float64, ledCount int, color RGB) (frame Frame) {
	if duration <= 0 {
		panic(fmt.Sprintf("progress rendered with a duration of %f", duration))
	}

	ratio := math.Max(0.0, math.Min(elapsed/duration, 1.0))
	lit := int(math.Floor(float64(ledCount) * ratio))

	frame = NewFrame(ledCount)
	for i := 0; i < lit; i++ {
		frame[i] = color
	}
	return frame
}
