package service

import (
	"context"
	"sync"

	"github.com/fadilmartias/cv-screening/internal/model"
)

type fakeCompletionResponse struct {
	text string
	err  error
}

// fakeCompletion replays queued responses and then repeats the last one.
type fakeCompletion struct {
	mu        sync.Mutex
	responses []fakeCompletionResponse
	calls     int
	temps     []float32
	maxTokens []int
}

func (f *fakeCompletion) enqueue(text string, err error) *fakeCompletion {
	f.responses = append(f.responses, fakeCompletionResponse{text: text, err: err})
	return f
}

func (f *fakeCompletion) Generate(ctx context.Context, prompt string, temperature float32, maxOutputTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.temps = append(f.temps, temperature)
	f.maxTokens = append(f.maxTokens, maxOutputTokens)
	if len(f.responses) == 0 {
		return "", ErrEmptyCompletion
	}
	res := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return res.text, res.err
}

type retrievalCall struct {
	scope RetrievalScope
	text  string
	topN  int
}

type fakeRetrieval struct {
	mu      sync.Mutex
	byScope map[RetrievalScope][]string
	err     error
	calls   []retrievalCall
}

func (f *fakeRetrieval) Query(ctx context.Context, scope RetrievalScope, text string, topN int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, retrievalCall{scope: scope, text: text, topN: topN})
	if f.err != nil {
		return nil, f.err
	}
	return f.byScope[scope], nil
}

func refScope(t model.DocumentType) RetrievalScope {
	return RetrievalScope{DocumentType: t}
}
