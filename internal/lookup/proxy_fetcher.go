package lookup

import (
	"context"
	"fmt"
	"time"

	"arena-god/internal/api"
	"arena-god/internal/constants"

	"github.com/valyala/fasthttp"
)

// ProxyFetcher sends queries through the /api/riot proxy so the caller never
// holds the upstream token.
type ProxyFetcher struct {
	baseURL string
	client  *fasthttp.Client
}

func NewProxyFetcher(baseURL string, client *fasthttp.Client) *ProxyFetcher {
	if client == nil {
		client = &fasthttp.Client{
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		}
	}
	return &ProxyFetcher{baseURL: baseURL, client: client}
}

func (f *ProxyFetcher) Fetch(ctx context.Context, q api.Query) (*api.Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.baseURL + constants.ProxyRoutePath + "?" + q.Values().Encode())
	req.Header.SetMethod(fasthttp.MethodGet)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = f.client.DoDeadline(req, resp, deadline)
	} else {
		err = f.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}

	return &api.Response{
		Status: resp.StatusCode(),
		Body:   append([]byte(nil), resp.Body()...),
	}, nil
}
