package domain

import "fmt"

// MatchedPair links two venue listings believed to represent the same
// real-world event, tagged with the similarity score that matched them.
type MatchedPair struct {
	A          Listing
	B          Listing
	Confidence float64
}

// NewMatchedPair builds a MatchedPair, rejecting out-of-range confidence.
// A confidence outside [0,1] is a construction bug in the caller, not a
// runtime condition.
func NewMatchedPair(a, b Listing, confidence float64) (MatchedPair, error) {
	if confidence < 0 || confidence > 1 {
		return MatchedPair{}, fmt.Errorf("%w: confidence %.4f outside [0,1]", ErrInvalidPair, confidence)
	}
	return MatchedPair{A: a, B: b, Confidence: confidence}, nil
}
