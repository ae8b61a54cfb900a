package imagemin

// RemoveViewBox exposes removeViewBox for testing.
func RemoveViewBox(data []byte) []byte { return removeViewBox(data) }

func InterlacedRows(height int) []int { return interlacedRows(height) }
