package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
)

// PodcastFeedImporter 从播客 RSS 导入节目，已存在的标题跳过
type PodcastFeedImporter struct {
	parser   *gofeed.Parser
	podcasts *PodcastService
	log      *logger.Logger
}

type ImportResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

func NewPodcastFeedImporter(podcasts *PodcastService, log *logger.Logger) *PodcastFeedImporter {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}
	return &PodcastFeedImporter{parser: parser, podcasts: podcasts, log: log}
}

func (f *PodcastFeedImporter) Import(ctx context.Context, feedURL string) (*ImportResult, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %v", ErrValidation, err)
	}
	return f.ImportFeed(ctx, feed)
}

// ImportFeed stores every episode of an already parsed feed.
func (f *PodcastFeedImporter) ImportFeed(ctx context.Context, feed *gofeed.Feed) (*ImportResult, error) {
	res := &ImportResult{Created: []string{}, Skipped: []string{}, Failed: []string{}}
	for _, item := range feed.Items {
		in := episodeInput(item)
		if in.Title == "" {
			continue
		}

		exists, err := f.podcasts.Exists(ctx, in.Title)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped = append(res.Skipped, in.Title)
			continue
		}

		if _, _, err := f.podcasts.Upsert(ctx, in); err != nil {
			f.log.Warn("Failed to import episode", "title", in.Title, "error", err)
			res.Failed = append(res.Failed, in.Title)
			continue
		}
		res.Created = append(res.Created, in.Title)
	}
	f.log.Info("Podcast feed imported", "feed", feed.Title,
		"created", len(res.Created), "skipped", len(res.Skipped), "failed", len(res.Failed))
	return res, nil
}

func episodeInput(item *gofeed.Item) models.PodcastInput {
	in := models.PodcastInput{Title: strings.TrimSpace(item.Title)}

	// 优先使用 content:encoded，其次是 description
	content := item.Content
	if content == "" {
		content = item.Description
	}
	in.Content = &content
	in.Description = &item.Description

	date := ""
	if item.PublishedParsed != nil {
		date = item.PublishedParsed.UTC().Format("2006-01-02")
	} else if item.Published != "" {
		date = item.Published
	}
	in.Date = &date

	link := item.Link
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "audio/") && enc.URL != "" {
			link = enc.URL
			break
		}
	}
	in.URL = &link
	return in
}
