package bloom

// Positions exposes the bit position derivation for tests.
func Positions(item string, m, k int) []int {
	return positions(item, m, k)
}
