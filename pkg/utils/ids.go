package utils

import "strconv"

// NewIDGenerator returns a function that generates unique ids within the
// agent process by incrementing a counter.  Not goroutine-safe.
func NewIDGenerator() func() string {
	lastID := 0
	return func() string {
		lastID++
		return strconv.Itoa(lastID)
	}
}
