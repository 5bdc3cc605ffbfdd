package simulation

import (
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/player"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/scoring"
)

const maxOvers = 4

// Generator fabricates T20-shaped performance records. Output for a player is
// a pure function of the seed, the match id and the player id, so concurrent
// callers and repeated finalize attempts see the same numbers.
type Generator struct {
	seed uint64
}

// NewGenerator returns a generator for seed. A zero seed picks one from the
// clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{seed: uint64(seed)}
}

func (g *Generator) Seed() uint64 {
	return g.seed
}

func (g *Generator) Generate(item player.Player) scoring.PerformanceRecord {
	faker := gofakeit.New(g.seed ^ xxhash.Sum64String(item.MatchID+"/"+item.ID))
	record := scoring.PerformanceRecord{PlayerID: item.ID, Simulated: true}

	batting(faker, item.Role, &record)
	if item.Role.Bowls() {
		bowling(faker, item.Role, &record)
	}

	return record
}

func batting(faker *gofakeit.Faker, role player.Role, record *scoring.PerformanceRecord) {
	ceiling := 110
	switch role {
	case player.RoleBowler:
		ceiling = 25
	case player.RoleAllRounder:
		ceiling = 70
	}

	// Roughly a third of innings are short regardless of role.
	if faker.Number(1, 3) == 1 {
		ceiling = min(ceiling, 12)
	}

	runs := faker.Number(0, ceiling)
	if runs == 0 {
		record.BallsFaced = faker.Number(0, 4)
		return
	}

	strikeRate := faker.Float64Range(85, 190)
	balls := int(math.Ceil(float64(runs) * 100 / strikeRate))
	sixes := faker.Number(0, runs/15)
	fours := faker.Number(0, max(0, runs-sixes*6)/8)

	record.Runs = runs
	record.BallsFaced = max(balls, 1)
	record.Fours = fours
	record.Sixes = sixes
}

func bowling(faker *gofakeit.Faker, role player.Role, record *scoring.PerformanceRecord) {
	overs := maxOvers
	if role == player.RoleAllRounder {
		overs = faker.Number(0, maxOvers)
	}
	if overs == 0 {
		return
	}

	// Weighted towards 0-2 wickets; 5-fors stay rare.
	wickets := 0
	switch roll := faker.Number(1, 100); {
	case roll > 98:
		wickets = 5
	case roll > 92:
		wickets = 4
	case roll > 80:
		wickets = 3
	case roll > 55:
		wickets = 2
	case roll > 25:
		wickets = 1
	}

	record.Overs = float64(overs)
	record.Wickets = wickets
	record.Economy = math.Round(faker.Float64Range(4, 11.5)*100) / 100
}
