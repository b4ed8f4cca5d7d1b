package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestNormalizeOMDbRecordTranslatesSentinels(t *testing.T) {
	rec := &OMDbRecord{
		Title:      "Heat",
		Year:       "1995",
		Rated:      "R",
		Genre:      "Crime, Drama",
		Director:   "N/A",
		Actors:     "Al Pacino, Robert De Niro",
		Plot:       "N/A",
		Poster:     "N/A",
		ImdbRating: "8.3",
		ImdbID:     "tt0113277",
		Type:       "movie",
		Response:   "True",
	}

	got := NormalizeOMDbRecord(rec)
	want := &DetailedContent{
		Ref:            ContentRef{Provider: ProviderOMDb, ID: "tt0113277"},
		Title:          "Heat",
		Year:           1995,
		PosterURL:      nil,
		Genre:          strPtr("Crime, Drama"),
		Plot:           nil,
		ContentRating:  strPtr("R"),
		CastSummary:    strPtr("Al Pacino, Robert De Niro"),
		Director:       nil,
		ImdbID:         strPtr("tt0113277"),
		ExternalRating: "8.3",
		ContentType:    ContentTypeMovie,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeOMDbRecord mismatch (-want +got):\n%s", diff)
	}
}

// Fields are normalized independently: the literal "N/A" must never
// survive into a nullable field, even when other fields are populated.
func TestNormalizeOMDbRecordNoSentinelLeaks(t *testing.T) {
	rec := &OMDbRecord{
		Title:      "Obscure Short",
		Year:       "N/A",
		Rated:      "N/A",
		Genre:      "N/A",
		Director:   "N/A",
		Actors:     "N/A",
		Plot:       "N/A",
		Poster:     "N/A",
		ImdbRating: "N/A",
		ImdbID:     "tt0000001",
		Type:       "movie",
	}

	got := NormalizeOMDbRecord(rec)

	for name, field := range map[string]*string{
		"PosterURL":     got.PosterURL,
		"Genre":         got.Genre,
		"Plot":          got.Plot,
		"ContentRating": got.ContentRating,
		"CastSummary":   got.CastSummary,
		"Director":      got.Director,
	} {
		if field != nil {
			t.Errorf("%s = %q, want nil", name, *field)
		}
	}
	if got.Year != 0 {
		t.Errorf("Year = %d, want 0", got.Year)
	}
	// The rating field is the one place that keeps the sentinel.
	if got.ExternalRating != "N/A" {
		t.Errorf("ExternalRating = %q, want N/A", got.ExternalRating)
	}
}

func TestNormalizeOMDbRecordTypeTagging(t *testing.T) {
	tests := []struct {
		rawType string
		want    ContentType
	}{
		{"movie", ContentTypeMovie},
		{"series", ContentTypeTV},
		{"episode", ContentTypeMovie},
		{"", ContentTypeMovie},
	}

	for _, tc := range tests {
		got := NormalizeOMDbRecord(&OMDbRecord{Type: tc.rawType})
		if got.ContentType != tc.want {
			t.Errorf("NormalizeOMDbRecord(Type=%q).ContentType = %q, want %q", tc.rawType, got.ContentType, tc.want)
		}
	}
}

func TestOmdbYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1995", 1995},
		{"2010–2015", 2010}, // running series range
		{"N/A", 0},
		{"", 0},
		{"abc", 0},
	}

	for _, tc := range tests {
		if got := omdbYear(tc.in); got != tc.want {
			t.Errorf("omdbYear(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTMDBDetailsMovie(t *testing.T) {
	details := &TMDBDetails{
		ID:          550,
		Title:       "Fight Club",
		Overview:    "An insomniac office worker.",
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.438,
		VoteCount:   26280,
		Genres:      []TMDBGenre{{ID: 18, Name: "Drama"}, {ID: 53, Name: "Thriller"}},
		PosterPath:  "/poster.jpg",
		Credits: TMDBCredits{
			Cast: []TMDBCastMember{
				{Name: "Edward Norton"}, {Name: "Brad Pitt"}, {Name: "Helena Bonham Carter"},
				{Name: "Meat Loaf"}, {Name: "Jared Leto"}, {Name: "Zach Grenier"},
			},
			Crew: []TMDBCrewMember{
				{Name: "Ross Grayson Bell", Job: "Producer"},
				{Name: "David Fincher", Job: "Director"},
			},
		},
	}

	got := NormalizeTMDBDetails(details, &TMDBExternalIDs{ImdbID: "tt0137523"}, ContentTypeMovie)
	want := &DetailedContent{
		Ref:            ContentRef{Provider: ProviderTMDB, ID: "550"},
		Title:          "Fight Club",
		Year:           1999,
		PosterURL:      strPtr("https://image.tmdb.org/t/p/w500/poster.jpg"),
		Genre:          strPtr("Drama, Thriller"),
		Plot:           strPtr("An insomniac office worker."),
		ContentRating:  nil,
		CastSummary:    strPtr("Edward Norton, Brad Pitt, Helena Bonham Carter, Meat Loaf, Jared Leto"),
		Director:       strPtr("David Fincher"),
		ImdbID:         strPtr("tt0137523"),
		ExternalRating: "8.4",
		ContentType:    ContentTypeMovie,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeTMDBDetails mismatch (-want +got):\n%s", diff)
	}
}

// A Producer appearing before the Director in the crew list must not
// win the director slot.
func TestTMDBDirectorPicksDirectorJob(t *testing.T) {
	details := &TMDBDetails{
		Credits: TMDBCredits{
			Crew: []TMDBCrewMember{
				{Name: "Jane Producer", Job: "Producer"},
				{Name: "John Director", Job: "Director"},
				{Name: "Second Director", Job: "Director"},
			},
		},
	}

	got := tmdbDirector(details, ContentTypeMovie)
	if got == nil || *got != "John Director" {
		t.Errorf("tmdbDirector = %v, want John Director", got)
	}
}

func TestTMDBDirectorBranchesOnContentType(t *testing.T) {
	details := &TMDBDetails{
		CreatedBy: []TMDBCreator{{Name: "Vince Gilligan"}},
		Credits: TMDBCredits{
			Crew: []TMDBCrewMember{{Name: "Some Director", Job: "Director"}},
		},
	}

	if got := tmdbDirector(details, ContentTypeTV); got == nil || *got != "Vince Gilligan" {
		t.Errorf("tv director = %v, want Vince Gilligan", got)
	}
	if got := tmdbDirector(&TMDBDetails{}, ContentTypeTV); got != nil {
		t.Errorf("tv director with no creators = %v, want nil", got)
	}
}

func TestNormalizeTMDBDetailsTVUsesFirstAirDate(t *testing.T) {
	details := &TMDBDetails{
		ID:           1396,
		Name:         "Breaking Bad",
		FirstAirDate: "2008-01-20",
		VoteAverage:  8.9,
		VoteCount:    12000,
	}

	got := NormalizeTMDBDetails(details, nil, ContentTypeTV)
	if got.Title != "Breaking Bad" {
		t.Errorf("Title = %q, want Breaking Bad", got.Title)
	}
	if got.Year != 2008 {
		t.Errorf("Year = %d, want 2008", got.Year)
	}
	if got.ImdbID != nil {
		t.Errorf("ImdbID = %v, want nil without external IDs", got.ImdbID)
	}
}

func TestTmdbVoteZeroVotesIsUnrated(t *testing.T) {
	if got := tmdbVote(0, 0); got != "N/A" {
		t.Errorf("tmdbVote(0, 0) = %q, want N/A", got)
	}
	if got := tmdbVote(7.25, 100); got != "7.2" {
		t.Errorf("tmdbVote(7.25, 100) = %q, want 7.2", got)
	}
}

func TestNormalizeTMDBSearchItemUsesThumbnailPoster(t *testing.T) {
	item := TMDBSearchItem{
		ID:          603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		VoteAverage: 8.2,
		VoteCount:   20000,
		PosterPath:  "/matrix.jpg",
	}

	got := NormalizeTMDBSearchItem(item, ContentTypeMovie)
	want := SearchResultItem{
		Ref:            ContentRef{Provider: ProviderTMDB, ID: "603"},
		Title:          "The Matrix",
		Year:           "1999",
		PosterURL:      strPtr("https://image.tmdb.org/t/p/w185/matrix.jpg"),
		ContentType:    ContentTypeMovie,
		ExternalRating: "8.2",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeTMDBSearchItem mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeOMDbSearchItem(t *testing.T) {
	got := NormalizeOMDbSearchItem(OMDbSearchItem{
		Title:  "Batman Begins",
		Year:   "2005",
		ImdbID: "tt0372784",
		Type:   "movie",
		Poster: "N/A",
	})

	if got.Ref.Provider != ProviderOMDb || got.Ref.ID != "tt0372784" {
		t.Errorf("Ref = %+v, want omdb:tt0372784", got.Ref)
	}
	if got.PosterURL != nil {
		t.Errorf("PosterURL = %v, want nil for N/A poster", got.PosterURL)
	}
	if got.Year != "2005" {
		t.Errorf("Year = %q, want 2005", got.Year)
	}
}
