package models

import (
	"path/filepath"
	"testing"
	"io"

	"medialog/internal/database"
	"medialog/internal/utils"
)

func TestZZRepro(t *testing.T) {
	logger := utils.NewLogger(false, io.Discard)
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "r.db"))
	if err != nil { t.Fatal(err) }
	defer db.Close()
	if err := database.RunMigrations(db, logger); err != nil { t.Fatal(err) }

	users := NewUserRepository(db)
	u, err := users.Create("alice", "x")
	if err != nil { t.Fatal(err) }

	repo := NewShowRepository(db)
	show := &TrackedShow{UserID: u.ID, Provider: "tmdb", ContentID: "1396", Title: "BB", TotalSeasons: 5}
	if err := repo.Track(show); err != nil { t.Fatal(err) }

	ep := WatchedEpisode{EpisodeID: "tt1", SeasonNumber: 1, EpisodeNumber: 1}
	if err := repo.MarkEpisode(show.ID, ep, true); err != nil { t.Fatal(err) }

	if _, err := repo.ListByUser(u.ID); err != nil { t.Fatal(err) }

	if s2, err := repo.GetByID(u.ID, show.ID); err != nil || s2 == nil { t.Fatalf("GetByID: %v %v", s2, err) }
	if err := repo.MarkEpisode(show.ID, ep, false); err != nil { t.Fatal(err) }

	eps, err := repo.ListEpisodes(show.ID)
	if err != nil { t.Fatal(err) }
	t.Logf("episodes after unmark = %+v", eps)
	if len(eps) != 0 { t.Error("REPRODUCED: delete after ListByUser was a no-op") }
}
