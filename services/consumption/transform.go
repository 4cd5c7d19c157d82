package consumption

import (
	"strings"
	"time"
)

const scoreGlyph = "⭐️"

const defaultCategory = "Uncategorized"

// Transform merges an enriched input into the canonical attribute
// record. The input must already carry retrieved metadata; Transform
// never fetches anything. `now` becomes CreatedAt (and LastUpdatedAt
// for books), set exactly once here.
func Transform(in Input, now time.Time) (Attributes, error) {
	switch in.Database {
	case DatabaseBook:
		if in.Book == nil || in.Book.Metadata == nil {
			return Attributes{}, ErrMissingMetadata
		}
		meta := in.Book.Metadata

		score := "N/A"
		if in.Book.Score > 0 {
			score = strings.Repeat(scoreGlyph, in.Book.Score)
		}
		category := in.Book.Category
		if category == "" {
			category = defaultCategory
		}

		return Attributes{
			Database:  in.Database,
			Name:      meta.Name,
			Origin:    in.Origin,
			CreatedAt: now,
			Review:    in.Book.Review,
			Score:     score,
			ImgURL:    meta.ImgURL,
			Book: &BookAttributes{
				AuthorPublishYearPublisher: meta.Authors + "/" + meta.PublishYear + "/" + meta.Publisher,
				Category:                   category,
				LastUpdatedAt:              now,
				Status:                     in.Book.Status,
			},
		}, nil

	case DatabaseMedia:
		if in.Media == nil || in.Media.Metadata == nil {
			return Attributes{}, ErrMissingMetadata
		}
		meta := in.Media.Metadata

		return Attributes{
			Database:  in.Database,
			Name:      meta.Name,
			Origin:    in.Origin,
			CreatedAt: now,
			Review:    in.Media.Review,
			// a media input without a score is a defect upstream,
			// there is no N/A fallback here
			Score:  strings.Repeat(scoreGlyph, in.Media.Score),
			ImgURL: meta.ImgURL,
			Media: &MediaAttributes{
				Type: InferMediaType(in),
			},
		}, nil
	}

	return Attributes{}, ErrUnrecognizedInput
}
