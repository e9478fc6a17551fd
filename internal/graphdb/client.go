package graphdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"conceptblog/internal/config"
	"conceptblog/internal/logger"
)

// Client is the process-wide Neo4j handle. It is created once in main and
// passed to every repository that needs the graph.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// Connect opens a driver and verifies the server is reachable.
func Connect(ctx context.Context, cfg config.Neo4j, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("graphdb: logger required")
	}
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, fmt.Errorf("graphdb: NEO4J_URI is empty")
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		if cfg.Timeout > 0 {
			c.SocketConnectTimeout = cfg.Timeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("graphdb: init driver: %w", err)
	}

	verifyCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphdb: verify connectivity: %w", err)
	}

	log.Info("Neo4j connection established", "uri", uri, "database", cfg.Database)
	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "Neo4j"),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: c.Database,
	})
}

// Run executes one auto-commit query and collects every row.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(records), nil
}

// Evaluate returns the first value of the first row, or nil when the query
// returns nothing. Used for existence checks.
func (c *Client) Evaluate(ctx context.Context, cypher string, params map[string]any) (any, error) {
	rows, err := c.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return firstValue(rows), nil
}

// Merge upserts a node by its primary key.
func (c *Client) Merge(ctx context.Context, n Node) error {
	cypher, params, err := mergeQuery(n)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, cypher, params)
	return err
}

// Create inserts a node unconditionally.
func (c *Client) Create(ctx context.Context, n Node) error {
	cypher, params, err := createQuery(n)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, cypher, params)
	return err
}

// WriteTx runs fn inside one managed write transaction. The transaction
// commits only when fn returns nil.
func (c *Client) WriteTx(ctx context.Context, fn func(Runner) error) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&txRunner{tx: tx})
	})
	return err
}

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (t *txRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(records), nil
}

func toRecords(in []*neo4j.Record) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, Record(r.AsMap()))
	}
	return out
}
