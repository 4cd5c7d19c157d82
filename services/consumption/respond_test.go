package consumption

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatStatusBook(t *testing.T) {
	attr := Attributes{
		Database: DatabaseBook,
		Name:     "星辰的繼承者",
		Origin:   "https://book.douban.com/subject/27102569/",
		Review:   "solid mystery",
		Score:    "⭐️⭐️⭐️⭐️",
		Book:     &BookAttributes{Status: StatusRead},
	}

	require.Equal(
		t,
		"⭐️⭐️⭐️⭐️读过《星辰的繼承者》: solid mystery https://book.douban.com/subject/27102569/",
		FormatStatus(attr, false),
	)
}

func TestFormatStatusBookMarkdown(t *testing.T) {
	attr := Attributes{
		Database: DatabaseBook,
		Name:     "星辰的繼承者",
		Origin:   "https://book.douban.com/subject/27102569/",
		Score:    "⭐️⭐️⭐️⭐️",
		Book:     &BookAttributes{Status: StatusRead},
	}

	require.Equal(
		t,
		"⭐️⭐️⭐️⭐️读过《[星辰的繼承者](https://book.douban.com/subject/27102569/)》 https://book.douban.com/subject/27102569/",
		FormatStatus(attr, true),
	)
}

func TestFormatStatusMedia(t *testing.T) {
	attr := Attributes{
		Database: DatabaseMedia,
		Name:     "行星与共 プラネット・ウィズ",
		Origin:   "https://movie.douban.com/subject/27089205/",
		Score:    "⭐️⭐️⭐️⭐️⭐️",
		Media:    &MediaAttributes{Type: TypeAnime},
	}

	require.Equal(
		t,
		"⭐️⭐️⭐️⭐️⭐️看过Anime《行星与共 プラネット・ウィズ》 https://movie.douban.com/subject/27089205/",
		FormatStatus(attr, false),
	)
}

func TestFormatStatusSkipsAbsentScore(t *testing.T) {
	attr := Attributes{
		Database: DatabaseBook,
		Name:     "some book",
		Origin:   "https://book.douban.com/subject/1/",
		Score:    "N/A",
		Book:     &BookAttributes{Status: StatusWantToRead},
	}

	require.Equal(
		t,
		"想读《some book》 https://book.douban.com/subject/1/",
		FormatStatus(attr, false),
	)
}

type fakePoster struct {
	statuses []string
	err      error
}

func (p *fakePoster) PostStatus(ctx context.Context, status string) error {
	if p.err != nil {
		return p.err
	}
	p.statuses = append(p.statuses, status)
	return nil
}

func TestFeedResponder(t *testing.T) {
	poster := &fakePoster{}
	responder := FeedResponder{Poster: poster}

	result := responder.Respond(context.Background(), Attributes{
		Database: DatabaseMedia,
		Name:     "some show",
		Origin:   "https://movie.douban.com/subject/1/",
		Score:    "⭐️⭐️⭐️",
		Media:    &MediaAttributes{Type: TypeAnime},
	})
	require.True(t, result.Success)
	require.Len(t, poster.statuses, 1)
}

func TestFeedResponderCapturesFailure(t *testing.T) {
	poster := &fakePoster{err: errors.New("instance unreachable")}
	responder := FeedResponder{Poster: poster}

	result := responder.Respond(context.Background(), Attributes{
		Database: DatabaseMedia,
		Name:     "some show",
		Media:    &MediaAttributes{Type: TypeAnime},
	})
	require.False(t, result.Success)
	require.Contains(t, result.Message, "instance unreachable")
}

func TestStoreResponder(t *testing.T) {
	store := newFakeStore()
	responder := StoreResponder{Store: store}

	result := responder.Respond(context.Background(), Attributes{
		Database:  DatabaseBook,
		Name:      "some book",
		Origin:    "https://book.douban.com/subject/1/",
		CreatedAt: time.Now(),
		Book:      &BookAttributes{Status: StatusRead},
	})
	require.True(t, result.Success)
	require.Len(t, store.created, 1)
}

func TestStoreResponderCapturesResolveFailure(t *testing.T) {
	store := newFakeStore()
	store.resolveErr = errors.New("store unreachable")
	responder := StoreResponder{Store: store}

	result := responder.Respond(context.Background(), Attributes{
		Database: DatabaseBook,
		Book:     &BookAttributes{},
	})
	require.False(t, result.Success)
	require.Contains(t, result.Message, "store unreachable")
}
