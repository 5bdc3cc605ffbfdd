package cricketdata

// Response shapes of the CricketData v1 API. Every endpoint wraps its body in
// {"status": "success"|"failure", "reason": "...", "data": ...}.

type envelope struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type currentMatchesResponse struct {
	envelope
	Data []feedMatch `json:"data"`
}

type feedMatch struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MatchType    string   `json:"matchType"`
	Status       string   `json:"status"`
	Venue        string   `json:"venue"`
	DateTimeGMT  string   `json:"dateTimeGMT"`
	Teams        []string `json:"teams"`
	MatchStarted bool     `json:"matchStarted"`
	MatchEnded   bool     `json:"matchEnded"`
}

type squadResponse struct {
	envelope
	Data []feedSquad `json:"data"`
}

type feedSquad struct {
	TeamName string       `json:"teamName"`
	Players  []feedPlayer `json:"players"`
}

type feedPlayer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Country string `json:"country"`
}

type scorecardResponse struct {
	envelope
	Data struct {
		ID        string        `json:"id"`
		Scorecard []feedInnings `json:"scorecard"`
	} `json:"data"`
}

type feedInnings struct {
	Inning  string        `json:"inning"`
	Batting []feedBatting `json:"batting"`
	Bowling []feedBowling `json:"bowling"`
}

type feedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type feedBatting struct {
	Batsman feedRef `json:"batsman"`
	Runs    int     `json:"r"`
	Balls   int     `json:"b"`
	Fours   int     `json:"4s"`
	Sixes   int     `json:"6s"`
}

type feedBowling struct {
	Bowler  feedRef `json:"bowler"`
	Overs   float64 `json:"o"`
	Runs    int     `json:"r"`
	Wickets int     `json:"w"`
}

func (e envelope) result() envelope {
	return e
}
