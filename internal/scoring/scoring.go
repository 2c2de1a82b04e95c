// Package scoring maps guess distance and elapsed time to points.
package scoring

import (
	"math"

	"campus-spot/internal/apperr"
)

const (
	MaxVersusPoints   = 1000
	MaxElapsedSeconds = 120

	perfectDistance = 10
	perfectSeconds  = 10
	distanceCutoff  = 110
	distanceWeight  = 900
	timeWeight      = 100
)

// Curve is the solo-mode point curve collaborator.
type Curve interface {
	SoloScore(distance float64) int
}

// VersusScore blends distance and elapsed time into a score in [0, 1000].
// Callers decide how to round the result.
func VersusScore(distance, elapsedSeconds float64) (float64, error) {
	if distance < 0 || math.IsNaN(distance) {
		return 0, apperr.Invalid("distance %v must not be negative", distance)
	}
	if elapsedSeconds < 0 || elapsedSeconds > MaxElapsedSeconds || math.IsNaN(elapsedSeconds) {
		return 0, apperr.Invalid("elapsed time %v must be within [0, %d] seconds", elapsedSeconds, MaxElapsedSeconds)
	}
	if elapsedSeconds < perfectSeconds && distance < perfectDistance {
		return MaxVersusPoints, nil
	}
	distancePoints := math.Max(0, 1-distance/distanceCutoff) * distanceWeight
	timePoints := math.Max(0, 1-elapsedSeconds/MaxElapsedSeconds) * timeWeight
	return distancePoints + timePoints, nil
}

// DefaultCurve is the solo curve the game ships with.
type DefaultCurve struct{}

func (DefaultCurve) SoloScore(distance float64) int {
	switch {
	case distance < 3:
		return 1500
	case distance < 6:
		return 1250
	case distance < 10:
		return 1000
	}
	return int(math.Max(0, math.Floor((1-distance/distanceCutoff)*1000)))
}
