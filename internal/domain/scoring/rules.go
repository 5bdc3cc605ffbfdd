package scoring

// Rules stores point values used by the engine.
type Rules struct {
	PointsPerRun        int
	HalfCenturyBonus    int
	CenturyBonus        int
	FourBonus           int
	SixBonus            int
	StrikeRateThreshold float64
	StrikeRateBonus     int

	PointsPerWicket  int
	FourWicketBonus  int
	FiveWicketBonus  int
	EconomyThreshold float64
	EconomyBonus     int

	CaptainMultiplier     float64
	ViceCaptainMultiplier float64
}

func DefaultRules() Rules {
	return Rules{
		PointsPerRun:        1,
		HalfCenturyBonus:    8,
		CenturyBonus:        16,
		FourBonus:           1,
		SixBonus:            2,
		StrikeRateThreshold: 150,
		StrikeRateBonus:     6,

		PointsPerWicket:  25,
		FourWicketBonus:  8,
		FiveWicketBonus:  50,
		EconomyThreshold: 5.0,
		EconomyBonus:     6,

		CaptainMultiplier:     2,
		ViceCaptainMultiplier: 1.5,
	}
}
