package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the Open Trivia DB question endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

const (
	DefaultAmount = 5
	TypeMultiple  = "multiple"
)

// Open Trivia DB response codes.
const (
	codeSuccess          = 0
	codeNoResults        = 1
	codeInvalidParameter = 2
	codeTokenNotFound    = 3
	codeTokenEmpty       = 4
	codeRateLimit        = 5
)

// Query selects a batch of questions.
type Query struct {
	Amount     int
	Type       string
	Category   int
	Difficulty string
}

func (q Query) values() url.Values {
	amount := q.Amount
	if amount <= 0 {
		amount = DefaultAmount
	}
	typ := q.Type
	if typ == "" {
		typ = TypeMultiple
	}
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", typ)
	if q.Category > 0 {
		params.Set("category", strconv.Itoa(q.Category))
	}
	if q.Difficulty != "" {
		params.Set("difficulty", q.Difficulty)
	}
	return params
}

type envelope struct {
	ResponseCode int                  `json:"response_code"`
	Results      []domain.RawQuestion `json:"results"`
}

// Client calls the trivia HTTP API. Concurrent identical queries share one
// upstream request since the API rate-limits per client address.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch returns the raw, still HTML-encoded records for q.
func (c *Client) Fetch(ctx context.Context, q Query) ([]domain.RawQuestion, error) {
	params := q.values()
	// the shared request outlives any single caller; the http client timeout bounds it
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(params.Encode(), func() (interface{}, error) {
		return c.fetch(shared, params)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.RawQuestion), nil
	}
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]domain.RawQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrFetchFailed, err)
	}

	switch body.ResponseCode {
	case codeSuccess:
		if len(body.Results) == 0 {
			return nil, domain.ErrNoQuestions
		}
		return body.Results, nil
	case codeNoResults:
		return nil, domain.ErrNoQuestions
	default:
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrFetchFailed, domain.ErrUpstreamRejected, describeCode(body.ResponseCode))
	}
}

func describeCode(code int) string {
	switch code {
	case codeInvalidParameter:
		return "invalid parameter"
	case codeTokenNotFound:
		return "session token not found"
	case codeTokenEmpty:
		return "session token exhausted"
	case codeRateLimit:
		return "rate limited"
	default:
		return "response code " + strconv.Itoa(code)
	}
}
