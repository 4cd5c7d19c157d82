package consumption

import "strings"

// InferMediaType resolves the concrete media sub-type. Precedence,
// first match wins:
//
//  1. explicit type on the input
//  2. type hint from already-retrieved metadata
//  3. url shape of the origin
//  4. Anime
//
// The ordering matters: a stale scraped hint must not override a type
// the user pinned, and an unambiguous url shape must not be shadowed
// by the default. It always returns a usable value.
func InferMediaType(in Input) MediaType {
	if in.Media != nil && in.Media.Type != "" {
		return in.Media.Type
	}
	if in.Media != nil && in.Media.Metadata != nil && in.Media.Metadata.Type != "" {
		return in.Media.Metadata.Type
	}
	if strings.Contains(in.Origin, "movie.douban.com") {
		return TypeAnime
	}
	if strings.Contains(in.Origin, "douban.com/game") {
		return TypeGame
	}
	if strings.Contains(in.Origin, "book.douban.com") {
		// the url cannot distinguish manga from light novels,
		// so this deliberately under-specifies to manga
		return TypeManga
	}
	return TypeAnime
}
