// Package fediverse posts statuses to a mastodon-compatible instance.
// Akkoma instances additionally accept a content type on the status
// form, which lets statuses carry markdown.
package fediverse

import (
	"context"
	"fmt"
	"time"

	"consumelog-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/fediverse")

type Config struct {
	// Instance is the base url, e.g. "https://o3o.ca".
	Instance string `json:"instance"`
	Token    string `json:"token"`
	// Markdown marks the instance as akkoma-flavored. Statuses posted
	// to it are sent as markdown.
	Markdown bool `json:"markdown"`
}

type Client struct {
	http     *resty.Client
	markdown bool
}

func New(config Config) *Client {
	client := resty.New().
		SetBaseURL(config.Instance).
		SetAuthToken(config.Token).
		SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "lib/fediverse/http")

	return &Client{http: client, markdown: config.Markdown}
}

// Markdown reports whether statuses to this instance should be
// formatted as markdown.
func (c *Client) Markdown() bool { return c.markdown }

// PostStatus publishes one public status.
func (c *Client) PostStatus(ctx context.Context, status string) error {
	ctx, span := tracer.Start(ctx, "PostStatus")
	defer span.End()

	form := map[string]string{
		"status": status,
	}
	if c.markdown {
		form["content_type"] = "text/markdown"
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/api/v1/statuses")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post failed")
		return err
	}
	if res.IsError() {
		err := fmt.Errorf("fediverse: post status: %s: %s", res.Status(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
