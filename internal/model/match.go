package model

import "fmt"

// Point is a screen coordinate in capture pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// MatchResult is the outcome of locating a reference image on a screen capture.
// Location is the center of the best-matching window and is only meaningful
// when Found is true.
type MatchResult struct {
	Found    bool    `yaml:"found"    json:"found"`
	Location Point   `yaml:"location" json:"location"`
	Score    float64 `yaml:"score"    json:"score"`
}
