package consumption

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records map[string][]Record

	resolveErr error
	created    []Attributes
	updated    map[string]Attributes
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[string][]Record{},
		updated: map[string]Attributes{},
	}
}

func (s *fakeStore) ResolveCollection(ctx context.Context, name string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return "collection-" + name, nil
}

func (s *fakeStore) QueryByOrigin(ctx context.Context, collectionID, originSubstring string) ([]Record, error) {
	return s.records[originSubstring], nil
}

func (s *fakeStore) Create(ctx context.Context, collectionID string, attr Attributes) error {
	s.created = append(s.created, attr)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, recordID string, attr Attributes) error {
	s.updated[recordID] = attr
	return nil
}

func TestUpsertCreatesWhenAbsent(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(store)

	attr := Attributes{Origin: "https://book.douban.com/subject/27102569/", Name: "星辰的繼承者"}
	err := syncer.Upsert(context.Background(), "c1", attr)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	require.Empty(t, store.updated)
}

func TestUpsertUpdatesWhenPresent(t *testing.T) {
	store := newFakeStore()
	// the store is queried by normalized origin, scheme and trailing
	// slash stripped
	store.records["book.douban.com/subject/27102569"] = []Record{
		{ID: "page-1", Origin: "https://book.douban.com/subject/27102569/"},
	}
	syncer := NewSyncer(store)

	attr := Attributes{Origin: "https://book.douban.com/subject/27102569/", Name: "星辰的繼承者"}
	err := syncer.Upsert(context.Background(), "c1", attr)
	require.NoError(t, err)

	require.Empty(t, store.created)
	require.Len(t, store.updated, 1)
	require.Equal(t, "星辰的繼承者", store.updated["page-1"].Name)
}

func TestUpsertRefusesAmbiguousOrigin(t *testing.T) {
	store := newFakeStore()
	store.records["book.douban.com/subject/1"] = []Record{
		{ID: "page-1"},
		{ID: "page-2"},
	}
	syncer := NewSyncer(store)

	err := syncer.Upsert(context.Background(), "c1", Attributes{
		Origin: "https://book.douban.com/subject/1/",
	})

	var ambiguous AmbiguousOriginError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, 2, ambiguous.Matches)

	// nothing written on ambiguity
	require.Empty(t, store.created)
	require.Empty(t, store.updated)
}

func TestUpsertIdempotent(t *testing.T) {
	store := newFakeStore()
	syncer := NewSyncer(store)

	attr := Attributes{Origin: "https://book.douban.com/subject/2/", Name: "first pass"}
	err := syncer.Upsert(context.Background(), "c1", attr)
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	// the first upsert made the record visible to the second
	store.records["book.douban.com/subject/2"] = []Record{{ID: "page-9", Origin: attr.Origin}}

	attr.Name = "second pass"
	err = syncer.Upsert(context.Background(), "c1", attr)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	require.Equal(t, "second pass", store.updated["page-9"].Name)
}
