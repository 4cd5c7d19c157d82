package goodreads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"consumelog-backend/lib/telemetry"
	"consumelog-backend/services/consumption"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setupScraper(t *testing.T) (*Scraper, *httptest.Server) {
	cleanup := telemetry.SetupForTesting(t, "scrapers/goodreads")
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.FileServer(http.Dir("testdata")))
	t.Cleanup(server.Close)

	scraper, err := New()
	require.NoError(t, err)
	return scraper, server
}

func TestRetrieveApolloState(t *testing.T) {
	scraper, server := setupScraper(t)

	meta, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   server.URL + "/next_data.html",
		Book:     &consumption.BookInput{},
	})
	require.NoError(t, err)
	require.NotNil(t, meta.Book)

	expected := consumption.BookMetadata{
		Name:        "Inherit the Stars",
		Authors:     "James P. Hogan",
		PublishYear: "1977",
		Publisher:   "Del Rey",
		ImgURL:      "https://images-na.ssl-images-amazon.com/images/S/compressed.photo.goodreads.com/books/1338px/772877.jpg",
	}
	if diff := cmp.Diff(expected, *meta.Book); diff != "" {
		t.Fatalf("book metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieveMetadataCard(t *testing.T) {
	scraper, server := setupScraper(t)

	meta, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   server.URL + "/ldjson.html",
		Book:     &consumption.BookInput{},
	})
	require.NoError(t, err)
	require.NotNil(t, meta.Book)

	expected := consumption.BookMetadata{
		Name:        "The Three-Body Problem (Remembrance of Earth’s Past, #1)",
		Authors:     "Liu Cixin, Ken Liu",
		PublishYear: "2014",
		Publisher:   "Tor Books",
		ImgURL:      "https://images-na.ssl-images-amazon.com/images/S/compressed.photo.goodreads.com/books/1415428227i/20518872.jpg",
	}
	if diff := cmp.Diff(expected, *meta.Book); diff != "" {
		t.Fatalf("book metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieveSkipsUndecodableBookNode(t *testing.T) {
	scraper, server := setupScraper(t)

	// the apollo Book node type-mismatches partway through decoding;
	// a half-decoded node must not win over the intact metadata card
	meta, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   server.URL + "/broken_next_data.html",
		Book:     &consumption.BookInput{},
	})
	require.NoError(t, err)
	require.NotNil(t, meta.Book)

	require.Equal(t, "Inherit the Stars", meta.Book.Name)
	require.Equal(t, "James P. Hogan", meta.Book.Authors)
	require.Equal(
		t,
		"https://images-na.ssl-images-amazon.com/images/S/compressed.photo.goodreads.com/books/1338px/772877.jpg",
		meta.Book.ImgURL,
	)
	// the broken node's publisher must not leak through
	require.Equal(t, "", meta.Book.Publisher)
}

func TestRetrieveTitleMissing(t *testing.T) {
	scraper, server := setupScraper(t)

	_, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   server.URL + "/missing.html",
		Book:     &consumption.BookInput{},
	})
	var notFound consumption.TitleNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRetrieveRejectsMediaInput(t *testing.T) {
	scraper, server := setupScraper(t)

	_, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseMedia,
		Origin:   server.URL + "/next_data.html",
		Media:    &consumption.MediaInput{},
	})
	var mismatch consumption.KindMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "goodreads", mismatch.Retriever)
}
