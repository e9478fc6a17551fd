// Package threads turns the nested comment tree returned by the graph into
// the ordered thread structure the article page renders.
package threads

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"conceptblog/internal/graphdb"
)

// ErrMissingAuthor is returned when a comment has no WROTE edge. Such a
// comment cannot be attributed and the whole thread is rejected.
var ErrMissingAuthor = errors.New("threads: comment has no author")

type RawAuthor struct {
	Username string `json:"username"`
}

// RawComment mirrors one node of the tree produced by apoc.convert.toTree.
type RawComment struct {
	UUID      string       `json:"uuid"`
	Content   string       `json:"content"`
	Timestamp string       `json:"timestamp"`
	Wrote     []RawAuthor  `json:"wrote"`
	AsReplyTo []RawComment `json:"as_reply_to"`
}

type CommentThread struct {
	UUID      string          `json:"uuid"`
	Content   string          `json:"content"`
	Author    string          `json:"author"`
	Timestamp string          `json:"timestamp"`
	Children  []CommentThread `json:"children"`
}

// Reconcile sorts every sibling list by timestamp ascending and flattens the
// author relation into a username.
func Reconcile(comments []RawComment) ([]CommentThread, error) {
	sorted := make([]RawComment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return before(sorted[i].Timestamp, sorted[j].Timestamp)
	})

	out := make([]CommentThread, 0, len(sorted))
	for _, c := range sorted {
		if len(c.Wrote) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingAuthor, c.UUID)
		}
		children, err := Reconcile(c.AsReplyTo)
		if err != nil {
			return nil, err
		}
		out = append(out, CommentThread{
			UUID:      c.UUID,
			Content:   c.Content,
			Author:    c.Wrote[0].Username,
			Timestamp: c.Timestamp,
			Children:  children,
		})
	}
	return out, nil
}

// Count returns the number of comments in the forest.
func Count(threads []CommentThread) int {
	n := 0
	for _, t := range threads {
		n += 1 + Count(t.Children)
	}
	return n
}

// before compares two timestamps. Parseable RFC 3339 values compare as
// instants; anything else falls back to string order, which matches the
// ISO-like format the original data was written in.
func before(a, b string) bool {
	ta, errA := parseTime(a)
	tb, errB := parseTime(b)
	if errA == nil && errB == nil {
		return ta.Before(tb)
	}
	return a < b
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Decode converts the value returned by `CALL apoc.convert.toTree(...)` (a
// map keyed by lower-cased relationship type) into comments. The root map is
// the article itself, so only its as_reply_to children are returned.
func Decode(tree any) ([]RawComment, error) {
	if tree == nil {
		return nil, nil
	}
	root := graphdb.AsMap(tree)
	if root == nil {
		return nil, fmt.Errorf("threads: unexpected tree value %T", tree)
	}
	return decodeList(root["as_reply_to"])
}

func decodeList(v any) ([]RawComment, error) {
	if v == nil {
		return nil, nil
	}
	items := graphdb.AsSlice(v)
	if items == nil {
		return nil, fmt.Errorf("threads: as_reply_to is %T, want list", v)
	}
	out := make([]RawComment, 0, len(items))
	for _, item := range items {
		m := graphdb.AsMap(item)
		if m == nil {
			return nil, fmt.Errorf("threads: comment is %T, want map", item)
		}
		c := RawComment{
			UUID:      graphdb.AsString(m["uuid"]),
			Content:   graphdb.AsString(m["content"]),
			Timestamp: graphdb.AsString(m["timestamp"]),
		}
		for _, w := range graphdb.AsSlice(m["wrote"]) {
			if author := graphdb.AsMap(w); author != nil {
				c.Wrote = append(c.Wrote, RawAuthor{Username: graphdb.AsString(author["username"])})
			}
		}
		children, err := decodeList(m["as_reply_to"])
		if err != nil {
			return nil, err
		}
		c.AsReplyTo = children
		out = append(out, c)
	}
	return out, nil
}
