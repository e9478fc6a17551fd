// Package graphdbtest provides an in-memory graphdb.Store that records
// queries and answers them from a script.
package graphdbtest

import (
	"context"
	"strings"
	"sync"

	"conceptblog/internal/graphdb"
)

type Call struct {
	Cypher string
	Params map[string]any
	InTx   bool
}

// Handler answers one query. Returning nil rows is an empty result.
type Handler func(cypher string, params map[string]any) ([]graphdb.Record, error)

type Store struct {
	mu      sync.Mutex
	calls   []Call
	handler Handler

	// TxErr, when set, makes WriteTx fail before running its function.
	TxErr     error
	Commits   int
	Rollbacks int
	Closed    bool
}

var _ graphdb.Store = (*Store)(nil)

func New(h Handler) *Store {
	return &Store{handler: h}
}

func (s *Store) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Store) run(cypher string, params map[string]any, inTx bool) ([]graphdb.Record, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Cypher: cypher, Params: params, InTx: inTx})
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(cypher, params)
}

func (s *Store) Run(_ context.Context, cypher string, params map[string]any) ([]graphdb.Record, error) {
	return s.run(cypher, params, false)
}

func (s *Store) Evaluate(ctx context.Context, cypher string, params map[string]any) (any, error) {
	rows, err := s.Run(ctx, cypher, params)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	for _, v := range rows[0] {
		return v, nil
	}
	return nil, nil
}

func (s *Store) Merge(ctx context.Context, n graphdb.Node) error {
	return graphdb.MergeWith(ctx, s, n)
}

func (s *Store) Create(ctx context.Context, n graphdb.Node) error {
	return graphdb.CreateWith(ctx, s, n)
}

// WriteTx runs fn against a runner that marks its calls as transactional.
// Nothing is undone on failure; Rollbacks only counts them.
func (s *Store) WriteTx(_ context.Context, fn func(graphdb.Runner) error) error {
	if s.TxErr != nil {
		return s.TxErr
	}
	err := fn(txRunner{s})
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}

func (s *Store) Close(context.Context) error {
	s.Closed = true
	return nil
}

func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Find returns the calls whose Cypher contains substr.
func (s *Store) Find(substr string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.Contains(c.Cypher, substr) {
			out = append(out, c)
		}
	}
	return out
}

type txRunner struct{ s *Store }

func (t txRunner) Run(_ context.Context, cypher string, params map[string]any) ([]graphdb.Record, error) {
	return t.s.run(cypher, params, true)
}

// Rows is a convenience for building handler results.
func Rows(records ...map[string]any) []graphdb.Record {
	out := make([]graphdb.Record, 0, len(records))
	for _, r := range records {
		out = append(out, graphdb.Record(r))
	}
	return out
}
