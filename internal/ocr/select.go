package ocr

// SelectBest returns the index of the winning attempt, or -1 when no
// attempt succeeded.
//
// The winner is the successful attempt with the strictly highest score;
// ties go to the earliest attempt, and attempts are expected in declaration
// order (variant-major, then configuration). Selection is a pure function
// of the slice, so it is reproducible however the attempts were produced.
func SelectBest(attempts []Attempt) int {
	best := -1
	for i, a := range attempts {
		if a.Outcome != Success {
			continue
		}
		if best < 0 || a.Score > attempts[best].Score {
			best = i
		}
	}
	return best
}
