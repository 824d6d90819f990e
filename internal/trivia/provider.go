package trivia

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Provider implements app.QuestionProvider on top of Client.
type Provider struct {
	client *Client
	query  Query

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProvider builds a provider for query. rnd may be nil; pass a seeded source
// for a reproducible option order.
func NewProvider(client *Client, query Query, rnd *rand.Rand) *Provider {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Provider{client: client, query: query, rnd: rnd}
}

// FetchQuestions fetches a batch using the configured query.
func (p *Provider) FetchQuestions(ctx context.Context) ([]domain.Question, error) {
	return p.Questions(ctx, p.query)
}

// Questions fetches and normalizes a batch for q.
func (p *Provider) Questions(ctx context.Context, q Query) ([]domain.Question, error) {
	raw, err := p.client.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	questions := Normalize(raw, p.rnd)
	p.mu.Unlock()

	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// Query returns the default query of the provider.
func (p *Provider) Query() Query {
	return p.query
}
