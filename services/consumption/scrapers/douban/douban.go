// Package douban scrapes book.douban.com and movie.douban.com subject
// pages. Douban serves loosely structured markup and rejects bare
// default user agents, so the client carries a realistic browser
// header set.
package douban

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"consumelog-backend/lib/htmlutil"
	"consumelog-backend/lib/telemetry"
	"consumelog-backend/services/consumption"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("consumption/scrapers/douban")

var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 6.1; rv:70.0) Gecko/20100101 Firefox/70.0",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "zh-CN,zh;q=0.8,zh-TW;q=0.7,zh-HK;q=0.5,en-US;q=0.3,en;q=0.2",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "no-cache",
}

type Scraper struct {
	http *resty.Client
}

func New() (*Scraper, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeaders(browserHeaders)
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "consumption/scrapers/douban/http")

	return &Scraper{http: client}, nil
}

func (s *Scraper) Name() string { return "douban" }

func (s *Scraper) Retrieve(ctx context.Context, in consumption.Input) (consumption.Metadata, error) {
	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("origin", in.Origin))

	res, err := s.http.R().
		SetContext(ctx).
		Get(in.Origin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return consumption.Metadata{}, fmt.Errorf("fetch %q: %w", in.Origin, err)
	}
	doc := htmlutil.ParseLenient(res.Body())

	switch in.Database {
	case consumption.DatabaseBook:
		meta, err := parseBook(doc, in.Origin)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return consumption.Metadata{}, err
		}
		return consumption.Metadata{Book: meta}, nil
	case consumption.DatabaseMedia:
		meta, err := parseMedia(doc, in)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return consumption.Metadata{}, err
		}
		return consumption.Metadata{Media: meta}, nil
	}

	return consumption.Metadata{}, consumption.ErrUnrecognizedInput
}

func parseBook(doc *goquery.Document, origin string) (*consumption.BookMetadata, error) {
	name := htmlutil.SelectText(doc, "h1 span")
	if name == "" {
		return nil, consumption.TitleNotFoundError{Origin: origin}
	}

	return &consumption.BookMetadata{
		Name:        name,
		Authors:     bookAuthors(doc),
		PublishYear: infoField(doc, "出版年:"),
		Publisher:   infoField(doc, "出版社:"),
		ImgURL:      htmlutil.SelectAttr(doc, "#mainpic a img", "src"),
	}, nil
}

func parseMedia(doc *goquery.Document, in consumption.Input) (*consumption.MediaMetadata, error) {
	// the origin could be a movie page (anime), a book page (manga,
	// light novel) or a game page, each with different markup
	typ := consumption.InferMediaType(in)

	if typ == consumption.TypeAnime {
		name := htmlutil.SelectText(doc, `span[property="v:itemreviewed"]`)
		if name == "" {
			return nil, consumption.TitleNotFoundError{Origin: in.Origin}
		}
		return &consumption.MediaMetadata{
			Name:   name,
			ImgURL: htmlutil.SelectAttr(doc, `img[rel="v:image"]`, "src"),
		}, nil
	}

	return nil, consumption.NotImplementedError{Type: typ}
}

// infoField returns the text that follows a labeled span inside the
// #info block, e.g. `<span class="pl">出版年:</span> 2017-8-31<br/>`.
// Empty when the label is absent, which is normal for sparse pages.
func infoField(doc *goquery.Document, label string) string {
	var value string
	doc.Find("#info span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != label {
			return true
		}
		for node := s.Nodes[0].NextSibling; node != nil; node = node.NextSibling {
			if node.Type == html.TextNode {
				text := strings.TrimSpace(node.Data)
				if text != "" {
					value = text
					return false
				}
				continue
			}
			break
		}
		return false
	})
	return value
}

// bookAuthors extracts the first author link. The primary pass expects
// the anchor as a sibling of the author label span; some book pages
// instead render the author links right before the line break, nested
// a level away from the label, so the fallback takes the first anchor
// of the #info block.
func bookAuthors(doc *goquery.Document) string {
	var author string
	doc.Find("#info span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.TrimSpace(s.Text())
		if label != "作者" && label != "作者:" {
			return true
		}
		for node := s.Nodes[0].NextSibling; node != nil; node = node.NextSibling {
			if node.Type == html.ElementNode && node.Data == "br" {
				break
			}
			if node.Type == html.ElementNode && node.Data == "a" {
				author = strings.TrimSpace(htmlutil.GetText(node))
				return false
			}
		}
		return false
	})
	if author != "" {
		return author
	}
	return htmlutil.SelectText(doc, "#info a")
}
