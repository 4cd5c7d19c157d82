// Package goodreads scrapes goodreads book pages. Two page shapes are
// in the wild: a simple embedded json-ld metadata card, and the newer
// rendition that ships a denormalized apollo state graph inside a
// __NEXT_DATA__ script. The graph is preferred since it also carries
// publisher details.
package goodreads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"time"

	"consumelog-backend/lib/htmlutil"
	"consumelog-backend/lib/telemetry"
	"consumelog-backend/lib/textutil"
	"consumelog-backend/services/consumption"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("consumption/scrapers/goodreads")

// the record store caps the title field's length, long-form titles
// (subtitle, series, edition all mashed in) get cut down to this
const maxTitleRunes = 100

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
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "consumption/scrapers/goodreads/http")

	return &Scraper{http: client}, nil
}

func (s *Scraper) Name() string { return "goodreads" }

func (s *Scraper) Retrieve(ctx context.Context, in consumption.Input) (consumption.Metadata, error) {
	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("origin", in.Origin))

	if in.Database != consumption.DatabaseBook || in.Book == nil {
		err := consumption.KindMismatchError{Retriever: s.Name(), Database: in.Database}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return consumption.Metadata{}, err
	}

	res, err := s.http.R().
		SetContext(ctx).
		Get(in.Origin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return consumption.Metadata{}, fmt.Errorf("fetch %q: %w", in.Origin, err)
	}
	doc := htmlutil.ParseLenient(res.Body())

	meta := parseApolloState(doc)
	if meta == nil {
		meta = parseMetadataCard(doc)
	}
	if meta == nil || meta.Name == "" {
		err := consumption.TitleNotFoundError{Origin: in.Origin}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return consumption.Metadata{}, err
	}

	if meta.PublishYear == "" || meta.Publisher == "" {
		year, publisher := parsePublicationInfo(doc)
		if meta.PublishYear == "" {
			meta.PublishYear = year
		}
		if meta.Publisher == "" {
			meta.Publisher = publisher
		}
	}

	return consumption.Metadata{Book: meta}, nil
}

type apolloBook struct {
	Title         string `json:"title"`
	TitleComplete string `json:"titleComplete"`
	ImageURL      string `json:"imageUrl"`
	Details       struct {
		Publisher       string `json:"publisher"`
		PublicationTime int64  `json:"publicationTime"`
	} `json:"details"`
}

type apolloContributor struct {
	Name string `json:"name"`
}

// parseApolloState reads the denormalized object graph out of the
// __NEXT_DATA__ script. The graph emits the true title twice, as the
// plain short form and as the long-form titleComplete; the short form
// wins and gets truncated to the store's field limit.
func parseApolloState(doc *goquery.Document) *consumption.BookMetadata {
	raw := htmlutil.SelectText(doc, "script#__NEXT_DATA__")
	if raw == "" {
		return nil
	}

	var nextData struct {
		Props struct {
			PageProps struct {
				ApolloState map[string]json.RawMessage `json:"apolloState"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	err := json.Unmarshal([]byte(raw), &nextData)
	if err != nil {
		return nil
	}

	var book apolloBook
	var authors []string
	for key, node := range nextData.Props.PageProps.ApolloState {
		if strings.HasPrefix(key, "Book:") && book.Title == "" && book.TitleComplete == "" {
			var candidate apolloBook
			err := json.Unmarshal(node, &candidate)
			if err == nil {
				book = candidate
			}
		}
		if strings.HasPrefix(key, "Contributor:") {
			var contributor apolloContributor
			err := json.Unmarshal(node, &contributor)
			if err == nil && contributor.Name != "" {
				authors = append(authors, contributor.Name)
			}
		}
	}

	title := book.Title
	if title == "" {
		title = book.TitleComplete
	}
	if title == "" {
		return nil
	}

	var publishYear string
	if book.Details.PublicationTime > 0 {
		publishYear = time.UnixMilli(book.Details.PublicationTime).UTC().Format("2006")
	}

	return &consumption.BookMetadata{
		Name:        textutil.TruncateRunes(title, maxTitleRunes),
		Authors:     strings.Join(authors, ", "),
		PublishYear: publishYear,
		Publisher:   book.Details.Publisher,
		ImgURL:      book.ImageURL,
	}
}

type ldBook struct {
	Type   string `json:"@type"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Author []struct {
		Name string `json:"name"`
	} `json:"author"`
}

// parseMetadataCard reads the simple json-ld card older page
// renditions embed. It has no publisher details, those stay empty.
func parseMetadataCard(doc *goquery.Document) *consumption.BookMetadata {
	var meta *consumption.BookMetadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var book ldBook
		err := json.Unmarshal([]byte(s.Text()), &book)
		if err != nil || book.Type != "Book" || book.Name == "" {
			return true
		}

		var authors []string
		for _, a := range book.Author {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}
		meta = &consumption.BookMetadata{
			Name:    textutil.TruncateRunes(book.Name, maxTitleRunes),
			Authors: strings.Join(authors, ", "),
			ImgURL:  book.Image,
		}
		return false
	})
	return meta
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var publishedRegex = regexp.MustCompile(
	`(?s)(?:Expected publication|Published).*?(` + strings.Join(months, "|") + `).*?(\d\d\d\d)(?:.+?by\s*(.+?)\s*$)?`,
)

// parsePublicationInfo best-effort parses the "Published <date> by
// <publisher>" details line, covering both published and
// expected-publication phrasings. Missing pieces come back empty.
func parsePublicationInfo(doc *goquery.Document) (year, publisher string) {
	text := htmlutil.SelectText(doc, `p[data-testid="publicationInfo"]`)
	if text == "" {
		for _, row := range htmlutil.SelectTexts(doc, "div.row") {
			if strings.Contains(row, "Published") {
				text = row
				break
			}
		}
	}
	if text == "" {
		return "", ""
	}

	groups := publishedRegex.FindStringSubmatch(text)
	if groups == nil {
		return "", ""
	}
	return strings.TrimSpace(groups[2]), strings.TrimSpace(groups[3])
}
