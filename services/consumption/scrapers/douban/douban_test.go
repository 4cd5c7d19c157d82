package douban

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
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/douban")
	t.Cleanup(cleanup)

	srv := httptest.NewServer(http.FileServer(http.Dir("testdata")))
	t.Cleanup(srv.Close)

	scraper, err := New()
	require.NoError(t, err)
	return scraper, srv
}

func TestRetrieveBook(t *testing.T) {
	scraper, srv := setupScraper(t)

	metadata, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   srv.URL + "/book.html",
		Book: &consumption.BookInput{
			Status:   consumption.StatusWantToRead,
			Category: "Uncategorized",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, metadata.Book)

	expected := consumption.BookMetadata{
		Name:        "星辰的繼承者",
		Authors:     "詹姆士·霍根",
		PublishYear: "2017-8-31",
		Publisher:   "獨步文化",
		ImgURL:      "https://img9.doubanio.com/view/subject/s/public/s29535861.jpg",
	}
	if diff := cmp.Diff(expected, *metadata.Book); diff != "" {
		t.Fatalf("unexpected book metadata (-want +got):\n%s", diff)
	}
}

func TestRetrieveAnime(t *testing.T) {
	scraper, srv := setupScraper(t)

	metadata, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseMedia,
		Origin:   srv.URL + "/anime.html",
		Media: &consumption.MediaInput{
			Type:  consumption.TypeAnime,
			Score: 3,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, metadata.Media)

	require.Equal(t, "行星与共 プラネット・ウィズ", metadata.Media.Name)
	require.Equal(
		t,
		"https://img9.doubanio.com/view/photo/s_ratio_poster/public/p2521559819.webp",
		metadata.Media.ImgURL,
	)
}

func TestRetrieveBookTitleMissing(t *testing.T) {
	scraper, srv := setupScraper(t)

	_, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: consumption.DatabaseBook,
		Origin:   srv.URL + "/does-not-exist.html",
		Book:     &consumption.BookInput{},
	})
	require.Error(t, err)
	var titleErr consumption.TitleNotFoundError
	require.ErrorAs(t, err, &titleErr)
}

func TestRetrieveUnimplementedMediaTypes(t *testing.T) {
	scraper, srv := setupScraper(t)

	for _, typ := range []consumption.MediaType{
		consumption.TypeManga,
		consumption.TypeLightNovel,
		consumption.TypeGame,
	} {
		_, err := scraper.Retrieve(context.Background(), consumption.Input{
			Database: consumption.DatabaseMedia,
			Origin:   srv.URL + "/anime.html",
			Media: &consumption.MediaInput{
				Type:  typ,
				Score: 3,
			},
		})
		require.Error(t, err)
		var notImpl consumption.NotImplementedError
		require.ErrorAs(t, err, &notImpl)
		require.Equal(t, typ, notImpl.Type)
	}
}

func TestRetrieveUnknownDatabase(t *testing.T) {
	scraper, srv := setupScraper(t)

	_, err := scraper.Retrieve(context.Background(), consumption.Input{
		Database: "unknown",
		Origin:   srv.URL + "/book.html",
	})
	require.ErrorIs(t, err, consumption.ErrUnrecognizedInput)
}
