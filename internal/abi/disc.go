package abi

// DiscriminantSize returns the tag width for a variant with numCases cases.
func DiscriminantSize(numCases int) uint64 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}

// FlagsSize returns the byte width of a flags value; more than 64 flags are
// stored as consecutive u32 words.
func FlagsSize(numFlags int) uint64 {
	switch {
	case numFlags == 0:
		return 0
	case numFlags <= 8:
		return 1
	case numFlags <= 16:
		return 2
	case numFlags <= 32:
		return 4
	case numFlags <= 64:
		return 8
	}
	return uint64((numFlags+31)/32) * 4
}
