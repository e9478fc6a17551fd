package repository

import (
	"context"
	"fmt"
	"time"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

func ownerMatch(ref models.OwnerRef) (string, error) {
	if !ref.Label.IsOwner() {
		return "", fmt.Errorf("label %q is not a content owner", ref.Label)
	}
	return fmt.Sprintf("MATCH (o:%s {%s: $key})", ref.Label, ref.Label.KeyProperty()), nil
}

// OwnerExists reports whether the owner node is present.
func OwnerExists(ctx context.Context, r graphdb.Runner, ref models.OwnerRef) (bool, error) {
	match, err := ownerMatch(ref)
	if err != nil {
		return false, err
	}
	v, err := graphdb.EvaluateWith(ctx, r, match+" RETURN count(o) > 0 AS found", map[string]any{"key": ref.Key})
	if err != nil {
		return false, fmt.Errorf("check %s: %w", ref, err)
	}
	return graphdb.AsBool(v), nil
}

// OwnerContent returns the stored content; found is false when the owner
// does not exist.
func OwnerContent(ctx context.Context, r graphdb.Runner, ref models.OwnerRef) (content string, found bool, err error) {
	match, err := ownerMatch(ref)
	if err != nil {
		return "", false, err
	}
	rows, err := r.Run(ctx, match+" RETURN coalesce(o.content, '') AS content", map[string]any{"key": ref.Key})
	if err != nil {
		return "", false, fmt.Errorf("load content of %s: %w", ref, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].String("content"), true, nil
}

// SetOwnerProperties applies an allow-listed property map. Keys come from
// the models' typed update structs, never from request input.
func SetOwnerProperties(ctx context.Context, r graphdb.Runner, ref models.OwnerRef, props map[string]any) error {
	if len(props) == 0 {
		return nil
	}
	match, err := ownerMatch(ref)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx, match+" SET o += $props", map[string]any{"key": ref.Key, "props": props})
	if err != nil {
		return fmt.Errorf("update %s: %w", ref, err)
	}
	return nil
}

// SetOwnerContent replaces content and bumps last_edited. extra carries
// properties derived from content, such as an article summary.
func SetOwnerContent(ctx context.Context, r graphdb.Runner, ref models.OwnerRef, content string, extra map[string]any, now time.Time) error {
	props := map[string]any{"content": content, "last_edited": models.Timestamp(now)}
	for k, v := range extra {
		props[k] = v
	}
	return SetOwnerProperties(ctx, r, ref, props)
}

// CreateOwner inserts a new owner node.
func CreateOwner(ctx context.Context, r graphdb.Runner, n graphdb.Node) error {
	if err := graphdb.CreateWith(ctx, r, n); err != nil {
		key, val := n.PrimaryKey()
		return fmt.Errorf("create %s{%s: %v}: %w", n.Label(), key, val, err)
	}
	return nil
}
