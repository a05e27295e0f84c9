package interp

import "time"

// nowSeconds backs the clock native binding: wall-clock seconds since the
// Unix epoch, as a float so fractional seconds are preserved.
func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
