package transport

import (
	"math"

	"github.com/fftai/gros-client-go/internal/log"
)

// Cover coerces value into [min, max] and never fails. A NaN value marks a
// missing parameter and is treated as 0 before clamping. Every coercion is
// logged as a warning so out-of-range callers are visible without turning
// motion commands into error paths.
func Cover(name string, value, min, max float64) float64 {
	if math.IsNaN(value) {
		log.Warn("parameter missing, defaulting to 0", "param", name)
		value = 0
	}
	if value > max {
		log.Warn("parameter above limit, clamped", "param", name, "value", value, "max", max)
		value = max
	}
	if value < min {
		log.Warn("parameter below limit, clamped", "param", name, "value", value, "min", min)
		value = min
	}
	return value
}
