package scoring

import "github.com/riskibarqy/fantasy-cricket/internal/domain/player"

// PerformanceGenerator fabricates a record for a player when no real data exists.
type PerformanceGenerator interface {
	Generate(item player.Player) PerformanceRecord
}

// GeneratorFunc adapts a plain function to PerformanceGenerator.
type GeneratorFunc func(item player.Player) PerformanceRecord

func (f GeneratorFunc) Generate(item player.Player) PerformanceRecord {
	return f(item)
}

// FixedPointsGenerator returns the player's base points as a precomputed value.
func FixedPointsGenerator() PerformanceGenerator {
	return GeneratorFunc(func(item player.Player) PerformanceRecord {
		points := item.BasePoints
		return PerformanceRecord{PlayerID: item.ID, FixedPoints: &points, Simulated: true}
	})
}
