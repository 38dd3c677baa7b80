package size

import "fmt"

var magnitudes = []string{"B", "KiB", "MiB", "GiB"}

// Format renders a byte count using binary magnitudes with two decimals (e.g. "2.00KiB"). The
// value is scaled while it is at least 1024, so 1024 renders as "1.00KiB" and 1023 as "1023.00B".
func Format[T ~int | ~int64 | ~uint64 | ~float64](n T) string {
	value := float64(n)
	magnitude := 0
	for value >= 1024 && magnitude < len(magnitudes)-1 {
		value /= 1024
		magnitude++
	}
	return fmt.Sprintf("%1.2f%s", value, magnitudes[magnitude])
}
