package domain

// Account is a Riot account identity. Puuid is stable across name changes.
type Account struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type MatchParticipant struct {
	Puuid        string `json:"puuid"`
	ChampionName string `json:"championName"`
	Placement    int    `json:"placement"`
}

type MatchDetails struct {
	Participants []MatchParticipant `json:"participants"`
}

// MatchInfo is the validated subset of an upstream match payload.
type MatchInfo struct {
	MatchID string       `json:"matchId,omitempty"`
	Info    MatchDetails `json:"info"`
}

type ParticipantResult struct {
	Champion  string `json:"champion"`
	Placement int    `json:"placement"`
}

type MatchResult struct {
	MatchID   string `json:"matchId"`
	Champion  string `json:"champion"`
	Placement int    `json:"placement"`
}

type ArenaProgress struct {
	FirstPlaceChampions []string `json:"firstPlaceChampions"`
}
