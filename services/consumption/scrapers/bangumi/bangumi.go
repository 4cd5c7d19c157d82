// Package bangumi retrieves media metadata from the bgm.tv subject
// API, the structured counterpart of the html scrapers: a subject page
// url maps straight onto an API endpoint with the same path.
package bangumi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"consumelog-backend/lib/telemetry"
	"consumelog-backend/services/consumption"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("consumption/scrapers/bangumi")

const DefaultAPIBase = "https://api.bgm.tv"

// subjectTypes maps the API's subject type codes onto media types.
// Code 1 covers printed works, which could be either manga or a light
// novel; it defaults to manga. Unknown codes map to the empty type.
var subjectTypes = map[int]consumption.MediaType{
	1: consumption.TypeManga,
	2: consumption.TypeAnime,
	4: consumption.TypeGame,
}

type Scraper struct {
	http *resty.Client
}

func New(apiBase string) *Scraper {
	client := resty.New()
	client.SetBaseURL(apiBase)
	client.SetHeader("User-Agent", "consumelog (https://github.com/consumelog)")
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "consumption/scrapers/bangumi/http")

	return &Scraper{http: client}
}

func (s *Scraper) Name() string { return "bangumi" }

type subjectResponse struct {
	Name   string `json:"name"`
	NameCN string `json:"name_cn"`
	Type   int    `json:"type"`
	Images struct {
		Common string `json:"common"`
		Medium string `json:"medium"`
	} `json:"images"`
}

func (s *Scraper) Retrieve(ctx context.Context, in consumption.Input) (consumption.Metadata, error) {
	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("origin", in.Origin))

	if in.Database != consumption.DatabaseMedia || in.Media == nil {
		err := consumption.KindMismatchError{Retriever: s.Name(), Database: in.Database}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return consumption.Metadata{}, err
	}

	origin, err := url.Parse(in.Origin)
	if err != nil {
		return consumption.Metadata{}, fmt.Errorf("parse origin %q: %w", in.Origin, err)
	}

	var subject subjectResponse
	res, err := s.http.R().
		SetContext(ctx).
		SetResult(&subject).
		Get(origin.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return consumption.Metadata{}, fmt.Errorf("fetch subject %q: %w", origin.Path, err)
	}
	if res.IsError() {
		err := fmt.Errorf("subject api returned %s for %q", res.Status(), origin.Path)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return consumption.Metadata{}, err
	}

	name := subject.Name
	if subject.NameCN != "" {
		name = subject.NameCN + " " + subject.Name
	}
	imgURL := subject.Images.Common
	if imgURL == "" {
		imgURL = subject.Images.Medium
	}

	return consumption.Metadata{
		Media: &consumption.MediaMetadata{
			Name:   name,
			ImgURL: imgURL,
			Type:   subjectTypes[subject.Type],
		},
	}, nil
}
