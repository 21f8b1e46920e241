package lookup

import (
	"fmt"

	"arena-god/internal/domain"

	"github.com/tidwall/gjson"
)

func parseRoot(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &ValidationError{Reason: "body is not valid JSON"}
	}
	return gjson.ParseBytes(body), nil
}

func requireString(obj gjson.Result, path string) (string, error) {
	v := obj.Get(path)
	if v.Type != gjson.String {
		return "", &ValidationError{Field: path, Reason: "must be a string"}
	}
	return v.String(), nil
}

func parseAccount(body []byte) (*domain.Account, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}
	if !root.IsObject() {
		return nil, &ValidationError{Reason: "account must be an object"}
	}

	var acc domain.Account
	if acc.Puuid, err = requireString(root, "puuid"); err != nil {
		return nil, err
	}
	if acc.GameName, err = requireString(root, "gameName"); err != nil {
		return nil, err
	}
	if acc.TagLine, err = requireString(root, "tagLine"); err != nil {
		return nil, err
	}
	return &acc, nil
}

func parseMatchIDs(body []byte) ([]string, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}
	if !root.IsArray() {
		return nil, &ValidationError{Reason: "match ids must be an array"}
	}

	items := root.Array()
	ids := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, &ValidationError{Field: fmt.Sprintf("[%d]", i), Reason: "must be a string"}
		}
		ids = append(ids, item.String())
	}
	return ids, nil
}

func parseMatchInfo(matchID string, body []byte) (*domain.MatchInfo, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, err
	}
	if !root.Get("info").IsObject() {
		return nil, &ValidationError{Field: "info", Reason: "must be an object"}
	}
	participants := root.Get("info.participants")
	if !participants.IsArray() {
		return nil, &ValidationError{Field: "info.participants", Reason: "must be an array"}
	}

	info := &domain.MatchInfo{MatchID: matchID}
	info.Info.Participants = make([]domain.MatchParticipant, 0, len(participants.Array()))
	for i, p := range participants.Array() {
		field := fmt.Sprintf("info.participants.%d", i)
		puuid, err := requireString(p, "puuid")
		if err != nil {
			return nil, &ValidationError{Field: field + ".puuid", Reason: "must be a string"}
		}
		champion, err := requireString(p, "championName")
		if err != nil {
			return nil, &ValidationError{Field: field + ".championName", Reason: "must be a string"}
		}
		placement := p.Get("placement")
		if placement.Type != gjson.Number {
			return nil, &ValidationError{Field: field + ".placement", Reason: "must be a number"}
		}
		info.Info.Participants = append(info.Info.Participants, domain.MatchParticipant{
			Puuid:        puuid,
			ChampionName: champion,
			Placement:    int(placement.Int()),
		})
	}
	return info, nil
}
