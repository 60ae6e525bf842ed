package http

// numDigits returns how many bytes strconv.AppendInt(dst, n, 10) appends.
func numDigits(n int64) int {
	digits := 1
	if n < 0 {
		digits++
		n = -n
	}

	for n >= 10 {
		digits++
		n /= 10
	}

	return digits
}
