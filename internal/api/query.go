package api

import (
	"context"
	"fmt"
	"net/url"

	"arena-god/internal/region"
)

type Endpoint string

const (
	EndpointAccount Endpoint = "account"
	EndpointMatches Endpoint = "matches"
	EndpointMatch   Endpoint = "match"
)

// Query is one logical upstream operation, independent of transport.
type Query struct {
	Endpoint Endpoint
	Region   region.Region
	GameName string
	TagLine  string
	Puuid    string
	MatchID  string
	Queue    string
}

// QueryError is a caller mistake; the proxy maps it to 400.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// ParseQuery reads a Query from proxy query parameters. A missing or unknown
// region falls back to region.Default.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Endpoint: Endpoint(values.Get("endpoint")),
		Region:   region.Parse(values.Get("region")),
		GameName: values.Get("gameName"),
		TagLine:  values.Get("tagLine"),
		Puuid:    values.Get("puuid"),
		MatchID:  values.Get("matchId"),
		Queue:    values.Get("queue"),
	}
	if q.Endpoint == "" {
		return q, &QueryError{Message: "Endpoint is required"}
	}
	return q, q.Validate()
}

func (q Query) Validate() error {
	switch q.Endpoint {
	case EndpointAccount:
		if q.GameName == "" || q.TagLine == "" {
			return &QueryError{Message: "Game name and tag line are required"}
		}
	case EndpointMatches:
		if q.Puuid == "" {
			return &QueryError{Message: "PUUID is required"}
		}
	case EndpointMatch:
		if q.MatchID == "" {
			return &QueryError{Message: "Match ID is required"}
		}
	case "":
		return &QueryError{Message: "Endpoint is required"}
	default:
		return &QueryError{Message: "Invalid endpoint"}
	}
	return nil
}

// Values encodes the query the way the proxy route expects it.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("endpoint", string(q.Endpoint))
	if q.Region != "" {
		v.Set("region", q.Region.String())
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("gameName", q.GameName)
	set("tagLine", q.TagLine)
	set("puuid", q.Puuid)
	set("matchId", q.MatchID)
	set("queue", q.Queue)
	return v
}

// Fetch runs q against the upstream directly.
func (c *RiotClient) Fetch(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	switch q.Endpoint {
	case EndpointAccount:
		return c.GetAccount(ctx, q.Region, q.GameName, q.TagLine)
	case EndpointMatches:
		return c.GetMatchIDs(ctx, q.Region, q.Puuid, q.Queue)
	case EndpointMatch:
		return c.GetMatch(ctx, q.Region, q.MatchID)
	}
	return nil, fmt.Errorf("unhandled endpoint %q", q.Endpoint)
}
