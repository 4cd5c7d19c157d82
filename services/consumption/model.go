// Package consumption implements the pipeline that turns a single
// consumption event (a finished book, a watched anime, a played game)
// into a normalized attribute record mirrored to a record store and a
// social feed.
package consumption

import "time"

// Database tags the two kinds of consumption inputs. The values are
// the literal database names used by the record store.
type Database string

const (
	DatabaseBook  Database = "读书"
	DatabaseMedia Database = "ACGN"
)

type BookStatus string

const (
	StatusWantToRead BookStatus = "想读"
	StatusReading    BookStatus = "在读"
	StatusRead       BookStatus = "读过"
	StatusAbandoned  BookStatus = "放弃"
)

// MediaType is the concrete sub-type of a media consumption. The empty
// string means "not resolved yet"; InferMediaType always resolves it.
type MediaType string

const (
	TypeAnime      MediaType = "Anime"
	TypeLightNovel MediaType = "Light Novel"
	TypeManga      MediaType = "Manga"
	TypeGame       MediaType = "Game"
)

// Input is one consumption event. Database is the variant tag; exactly
// one of Book or Media is non-nil and must agree with it. Fields of the
// inactive variant must not be read.
type Input struct {
	Database Database
	// Origin is the source url, unique per logical item. It doubles
	// as the dedup key against the record store.
	Origin string
	Book   *BookInput
	Media  *MediaInput
}

type BookInput struct {
	Status   BookStatus
	Review   string
	// Score is 1-5, 0 means not scored.
	Score    int
	Category string
	Metadata *BookMetadata
}

type MediaInput struct {
	Review string
	// Score is 1-5 and required for media.
	Score int
	// Type may be left empty, in which case it is inferred.
	Type     MediaType
	Metadata *MediaMetadata
}

// BookMetadata holds scraped book fields. Everything except Name is
// best effort and may be empty.
type BookMetadata struct {
	Name        string
	Authors     string
	PublishYear string
	Publisher   string
	ImgURL      string
}

// MediaMetadata holds scraped media fields. Type is a hint only, it
// never overrides a type supplied on the input.
type MediaMetadata struct {
	Name   string
	ImgURL string
	Type   MediaType
}

// Metadata is the result of a retrieval, one of the two variants.
type Metadata struct {
	Book  *BookMetadata
	Media *MediaMetadata
}

// WithMetadata returns a copy of the input with the retrieved metadata
// attached to the active variant. The receiver is not mutated.
func (in Input) WithMetadata(m Metadata) Input {
	switch in.Database {
	case DatabaseBook:
		if in.Book != nil && m.Book != nil {
			book := *in.Book
			book.Metadata = m.Book
			in.Book = &book
		}
	case DatabaseMedia:
		if in.Media != nil && m.Media != nil {
			media := *in.Media
			media.Metadata = m.Media
			in.Media = &media
		}
	}
	return in
}

// Attributes is the canonical store-ready record produced by Transform.
// It mirrors the tagged-union shape of Input.
type Attributes struct {
	Database  Database
	Name      string
	Origin    string
	CreatedAt time.Time
	Review    string
	// Score is either "N/A" or 1-5 star glyphs.
	Score  string
	ImgURL string
	Book   *BookAttributes
	Media  *MediaAttributes
}

type BookAttributes struct {
	// AuthorPublishYearPublisher is the three raw metadata fields
	// slash-joined; missing fields leave adjacent slashes.
	AuthorPublishYearPublisher string
	Category                   string
	// LastUpdatedAt equals CreatedAt at transform time; only the
	// store's update path refreshes it afterwards.
	LastUpdatedAt time.Time
	Status        BookStatus
}

type MediaAttributes struct {
	Type MediaType
}
