package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"arena-god/internal/config"
	"arena-god/internal/constants"
	"arena-god/internal/region"

	"github.com/valyala/fasthttp"
)

const tokenHeader = "X-Riot-Token"

type RiotClient struct {
	token       string
	client      *fasthttp.Client
	baseURL     func(region.Region) string
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	AppLimit       string `json:"app_limit"`
	AppCount       string `json:"app_count"`
	MethodLimit    string `json:"method_limit"`
	MethodCount    string `json:"method_count"`
	RetryAfterSecs int    `json:"retry_after"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Response is an upstream reply; Body is owned by the caller.
type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

type Option func(*RiotClient)

func WithHTTPClient(client *fasthttp.Client) Option {
	return func(c *RiotClient) { c.client = client }
}

// WithBaseURL overrides the regional host lookup, mainly for tests.
func WithBaseURL(fn func(region.Region) string) Option {
	return func(c *RiotClient) { c.baseURL = fn }
}

func NewRiotClient(cfg *config.Config) *RiotClient {
	return NewRiotClientWith(cfg.RiotAPIToken)
}

func NewRiotClientWith(token string, opts ...Option) *RiotClient {
	c := &RiotClient{
		token: token,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		baseURL:   region.BaseURL,
		rateLimit: RateLimitInfo{UpdatedAt: time.Now()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-App-Rate-Limit")); v != "" {
		c.rateLimit.AppLimit = v
	}
	if v := string(resp.Header.Peek("X-App-Rate-Limit-Count")); v != "" {
		c.rateLimit.AppCount = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit")); v != "" {
		c.rateLimit.MethodLimit = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit-Count")); v != "" {
		c.rateLimit.MethodCount = v
	}
	c.rateLimit.RetryAfterSecs = 0
	if v := string(resp.Header.Peek("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RetryAfterSecs = secs
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *RiotClient) GetAccount(ctx context.Context, r region.Region, gameName, tagLine string) (*Response, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL(r), url.PathEscape(gameName), url.PathEscape(tagLine))
	return c.do(ctx, u)
}

// GetMatchIDs asks for the first page of match ids; queue is optional.
func (c *RiotClient) GetMatchIDs(ctx context.Context, r region.Region, puuid, queue string) (*Response, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		c.baseURL(r), url.PathEscape(puuid), constants.MatchPageSize)
	if queue != "" {
		u += "&queue=" + url.QueryEscape(queue)
	}
	return c.do(ctx, u)
}

func (c *RiotClient) GetMatch(ctx context.Context, r region.Region, matchID string) (*Response, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL(r), url.PathEscape(matchID))
	return c.do(ctx, u)
}

func (c *RiotClient) do(ctx context.Context, url string) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("riot request failed: %w", err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("riot request failed: %w", err)
		}
	}

	c.updateRateLimit(resp)

	return &Response{
		Status: resp.StatusCode(),
		Body:   append([]byte(nil), resp.Body()...),
	}, nil
}
