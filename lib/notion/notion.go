// Package notion is a small client for the pieces of the notion API the
// consumption pipeline needs: finding a database by name, querying pages
// by url, and creating or patching pages. It implements
// consumption.RecordStore.
package notion

import (
	"context"
	"fmt"
	"time"

	"consumelog-backend/lib/telemetry"
	"consumelog-backend/services/consumption"

	"github.com/antzucaro/matchr"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/notion")

const DefaultBaseURL = "https://api.notion.com"

// apiVersion is pinned, notion versions payload shapes by date.
const apiVersion = "2022-06-28"

// resolving a database by fuzzy title match below this similarity is
// more likely a wrong database than a typo
const minTitleSimilarity = 0.8

// two qualifying titles scoring this close to each other cannot be
// told apart, picking one would be a guess
const titleAmbiguityMargin = 0.05

type Config struct {
	Token   string `json:"token"`
	BaseURL string `json:"base_url"`
	// Databases maps database names to ids, skipping the search api
	// for names listed here.
	Databases map[string]string `json:"databases"`
}

type Client struct {
	http      *resty.Client
	databases map[string]string
}

func New(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(config.Token).
		SetHeader("Notion-Version", apiVersion).
		SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "lib/notion/http")

	return &Client{http: client, databases: config.Databases}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e apiError) Error() string {
	return fmt.Sprintf("notion: %s (%d): %s", e.Code, e.Status, e.Message)
}

type richTextObj struct {
	PlainText string `json:"plain_text"`
	Text      struct {
		Content string `json:"content"`
	} `json:"text"`
}

func flattenRichText(parts []richTextObj) string {
	out := ""
	for _, p := range parts {
		if p.PlainText != "" {
			out += p.PlainText
		} else {
			out += p.Text.Content
		}
	}
	return out
}

type searchResult struct {
	Object string        `json:"object"`
	ID     string        `json:"id"`
	Title  []richTextObj `json:"title"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// ResolveCollection maps a database name to its id. Configured names
// take priority; everything else goes through the search api and the
// closest title wins, so minor name drift on the notion side does not
// break the pipeline.
func (c *Client) ResolveCollection(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "ResolveCollection")
	defer span.End()
	span.SetAttributes(attribute.String("database", name))

	if id, ok := c.databases[name]; ok {
		return id, nil
	}

	var result searchResponse
	var apiErr apiError
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"query": name,
			"filter": map[string]any{
				"property": "object",
				"value":    "database",
			},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/v1/search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return "", err
	}
	if res.IsError() {
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return "", apiErr
	}

	bestID := ""
	bestScore := 0.0
	runnerUp := 0.0
	for _, db := range result.Results {
		title := flattenRichText(db.Title)
		score := matchr.JaroWinkler(name, title, false)
		switch {
		case score > bestScore:
			runnerUp = bestScore
			bestScore = score
			bestID = db.ID
		case score > runnerUp:
			runnerUp = score
		}
	}
	if bestID == "" || bestScore < minTitleSimilarity {
		err := fmt.Errorf("notion: no database matching %q", name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if runnerUp >= minTitleSimilarity && bestScore-runnerUp < titleAmbiguityMargin {
		err := fmt.Errorf("notion: multiple databases match %q, refusing to guess", name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return bestID, nil
}

type queryResult struct {
	ID         string `json:"id"`
	Properties struct {
		Origin struct {
			URL string `json:"url"`
		} `json:"Origin"`
	} `json:"properties"`
}

type queryResponse struct {
	Results []queryResult `json:"results"`
}

// QueryByOrigin returns the pages whose Origin url contains the given
// substring.
func (c *Client) QueryByOrigin(ctx context.Context, collectionID, originSubstring string) ([]consumption.Record, error) {
	ctx, span := tracer.Start(ctx, "QueryByOrigin")
	defer span.End()
	span.SetAttributes(attribute.String("origin", originSubstring))

	var result queryResponse
	var apiErr apiError
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"filter": map[string]any{
				"property": "Origin",
				"url": map[string]any{
					"contains": originSubstring,
				},
			},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/v1/databases/%s/query", collectionID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, err
	}
	if res.IsError() {
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	records := make([]consumption.Record, 0, len(result.Results))
	for _, page := range result.Results {
		records = append(records, consumption.Record{
			ID:     page.ID,
			Origin: page.Properties.Origin.URL,
		})
	}
	return records, nil
}

// Create adds a new page for the record, cover included.
func (c *Client) Create(ctx context.Context, collectionID string, attr consumption.Attributes) error {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()
	span.SetAttributes(attribute.String("origin", attr.Origin))

	body := map[string]any{
		"parent": map[string]any{
			"database_id": collectionID,
		},
		"properties": pageProperties(attr, true),
	}
	if attr.ImgURL != "" {
		body["cover"] = externalCover(attr.ImgURL)
	}

	var apiErr apiError
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Post("/v1/pages")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return err
	}
	if res.IsError() {
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}
	return nil
}

// Update patches an existing page, cover included. The creation
// timestamp is left as is; the last-updated field is refreshed to now.
func (c *Client) Update(ctx context.Context, recordID string, attr consumption.Attributes) error {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.String("record", recordID))

	props := pageProperties(attr, false)
	if attr.Book != nil {
		props["Last Updated At"] = dateProp(time.Now())
	}

	body := map[string]any{"properties": props}
	if attr.ImgURL != "" {
		body["cover"] = externalCover(attr.ImgURL)
	}

	var apiErr apiError
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Patch(fmt.Sprintf("/v1/pages/%s", recordID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if res.IsError() {
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}
	return nil
}

func externalCover(url string) map[string]any {
	return map[string]any{
		"type": "external",
		"external": map[string]any{
			"url": url,
		},
	}
}

func titleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func richTextProp(text string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func selectProp(name string) map[string]any {
	return map[string]any{
		"select": map[string]any{"name": name},
	}
}

func urlProp(url string) map[string]any {
	return map[string]any{"url": url}
}

func dateProp(t time.Time) map[string]any {
	return map[string]any{
		"date": map[string]any{"start": t.Format(time.RFC3339)},
	}
}

// pageProperties translates Attributes into a notion property payload.
// create controls whether the creation timestamp is included, updates
// must not touch it.
func pageProperties(attr consumption.Attributes, create bool) map[string]any {
	props := map[string]any{
		"Name":   titleProp(attr.Name),
		"Origin": urlProp(attr.Origin),
		"Review": richTextProp(attr.Review),
		"Score":  selectProp(attr.Score),
	}
	if create {
		props["Created At"] = dateProp(attr.CreatedAt)
	}

	switch {
	case attr.Book != nil:
		props["Author/Publish Year/Publisher"] = richTextProp(attr.Book.AuthorPublishYearPublisher)
		props["Category"] = selectProp(attr.Book.Category)
		props["Status"] = selectProp(string(attr.Book.Status))
		if create {
			props["Last Updated At"] = dateProp(attr.Book.LastUpdatedAt)
		}
	case attr.Media != nil:
		props["Type"] = selectProp(string(attr.Media.Type))
	}
	return props
}
