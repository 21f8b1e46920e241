package lookup

import "arena-god/internal/domain"

// FindParticipantResult returns the champion and placement of puuid in info.
// A missing participant is reported with ok == false.
func FindParticipantResult(info *domain.MatchInfo, puuid string) (domain.ParticipantResult, bool) {
	if info == nil {
		return domain.ParticipantResult{}, false
	}
	for _, p := range info.Info.Participants {
		if p.Puuid == puuid {
			return domain.ParticipantResult{Champion: p.ChampionName, Placement: p.Placement}, true
		}
	}
	return domain.ParticipantResult{}, false
}
