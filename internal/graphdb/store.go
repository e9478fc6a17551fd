package graphdb

import (
	"context"
	"fmt"
	"regexp"
)

// Runner executes a parameterized Cypher query. Both the client (auto-commit)
// and an open transaction satisfy it.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
}

// Store is the graph interface the rest of the application consumes.
type Store interface {
	Runner
	Evaluate(ctx context.Context, cypher string, params map[string]any) (any, error)
	Merge(ctx context.Context, n Node) error
	Create(ctx context.Context, n Node) error
	WriteTx(ctx context.Context, fn func(Runner) error) error
	Close(ctx context.Context) error
}

var _ Store = (*Client)(nil)

// Node is anything that can be written as a single labelled graph node.
type Node interface {
	Label() string
	PrimaryKey() (property string, value any)
	Properties() map[string]any
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Labels and property names cannot be query parameters, so they are checked
// against a strict identifier pattern before they reach Cypher text.
func checkIdent(kind, s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("graphdb: invalid %s %q", kind, s)
	}
	return nil
}

func mergeQuery(n Node) (string, map[string]any, error) {
	label := n.Label()
	key, val := n.PrimaryKey()
	if err := checkIdent("label", label); err != nil {
		return "", nil, err
	}
	if err := checkIdent("property", key); err != nil {
		return "", nil, err
	}
	cypher := fmt.Sprintf("MERGE (n:%s {%s: $key}) SET n += $props", label, key)
	return cypher, map[string]any{"key": val, "props": n.Properties()}, nil
}

func createQuery(n Node) (string, map[string]any, error) {
	label := n.Label()
	if err := checkIdent("label", label); err != nil {
		return "", nil, err
	}
	cypher := fmt.Sprintf("CREATE (n:%s) SET n = $props", label)
	return cypher, map[string]any{"props": n.Properties()}, nil
}

// MergeWith upserts a node through an arbitrary runner, typically a
// transaction.
func MergeWith(ctx context.Context, r Runner, n Node) error {
	cypher, params, err := mergeQuery(n)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, cypher, params)
	return err
}

// CreateWith inserts a node through an arbitrary runner.
func CreateWith(ctx context.Context, r Runner, n Node) error {
	cypher, params, err := createQuery(n)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, cypher, params)
	return err
}

// EvaluateWith mirrors Client.Evaluate for an arbitrary runner.
func EvaluateWith(ctx context.Context, r Runner, cypher string, params map[string]any) (any, error) {
	rows, err := r.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return firstValue(rows), nil
}

func firstValue(rows []Record) any {
	if len(rows) == 0 {
		return nil
	}
	for _, v := range rows[0] {
		return v
	}
	return nil
}
