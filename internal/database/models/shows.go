package models

import (
	"database/sql"
	"time"
)

// TrackedShow is a TV show whose episode progress a user is tracking.
type TrackedShow struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Provider     string    `json:"provider"`
	ContentID    string    `json:"content_id"`
	Title        string    `json:"title"`
	PosterURL    *string   `json:"poster_url"`
	TotalSeasons int       `json:"total_seasons"`
	AddedAt      time.Time `json:"added_at"`

	// WatchedEpisodes is populated on list reads, not stored on the
	// show row itself.
	WatchedEpisodes []WatchedEpisode `json:"watched_episodes,omitempty"`
}

// WatchedEpisode records one episode a user has seen. EpisodeID is the
// assembler's episode identifier, so progress survives re-fetches as
// long as the provider's episode IDs do.
type WatchedEpisode struct {
	EpisodeID     string    `json:"episode_id"`
	SeasonNumber  int       `json:"season_number"`
	EpisodeNumber int       `json:"episode_number"`
	WatchedAt     time.Time `json:"watched_at"`
}

type ShowRepository struct {
	db *sql.DB
}

func NewShowRepository(db *sql.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

func (r *ShowRepository) Track(show *TrackedShow) error {
	result, err := r.db.Exec(`
        INSERT INTO tracked_shows (user_id, provider, content_id, title, poster_url, total_seasons)
        VALUES (?, ?, ?, ?, ?, ?)
    `, show.UserID, show.Provider, show.ContentID, show.Title, show.PosterURL, show.TotalSeasons)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	show.ID = id
	show.AddedAt = time.Now()
	return nil
}

func (r *ShowRepository) Untrack(userID, id int64) error {
	_, err := r.db.Exec("DELETE FROM tracked_shows WHERE id = ? AND user_id = ?", id, userID)
	return err
}

// GetByID returns nil without error when the show is not tracked by
// this user.
func (r *ShowRepository) GetByID(userID, id int64) (*TrackedShow, error) {
	row := r.db.QueryRow(`
        SELECT id, user_id, provider, content_id, title, poster_url, total_seasons, added_at
        FROM tracked_shows WHERE id = ? AND user_id = ?
    `, id, userID)

	var s TrackedShow
	err := row.Scan(&s.ID, &s.UserID, &s.Provider, &s.ContentID, &s.Title,
		&s.PosterURL, &s.TotalSeasons, &s.AddedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShowRepository) ListByUser(userID int64) ([]TrackedShow, error) {
	rows, err := r.db.Query(`
        SELECT id, user_id, provider, content_id, title, poster_url, total_seasons, added_at
        FROM tracked_shows WHERE user_id = ? ORDER BY added_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shows []TrackedShow
	for rows.Next() {
		var s TrackedShow
		err := rows.Scan(&s.ID, &s.UserID, &s.Provider, &s.ContentID, &s.Title,
			&s.PosterURL, &s.TotalSeasons, &s.AddedAt)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range shows {
		episodes, err := r.ListEpisodes(shows[i].ID)
		if err != nil {
			return nil, err
		}
		shows[i].WatchedEpisodes = episodes
	}
	return shows, nil
}

// MarkEpisode sets one episode watched or unwatched. Marking an
// already-watched episode again is a no-op.
func (r *ShowRepository) MarkEpisode(showID int64, ep WatchedEpisode, watched bool) error {
	if !watched {
		_, err := r.db.Exec(
			"DELETE FROM watched_episodes WHERE show_id = ? AND episode_id = ?",
			showID, ep.EpisodeID,
		)
		return err
	}

	_, err := r.db.Exec(`
        INSERT INTO watched_episodes (show_id, episode_id, season_number, episode_number)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (show_id, episode_id) DO NOTHING
    `, showID, ep.EpisodeID, ep.SeasonNumber, ep.EpisodeNumber)
	return err
}

func (r *ShowRepository) ListEpisodes(showID int64) ([]WatchedEpisode, error) {
	rows, err := r.db.Query(`
        SELECT episode_id, season_number, episode_number, watched_at
        FROM watched_episodes WHERE show_id = ?
        ORDER BY season_number, episode_number
    `, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []WatchedEpisode
	for rows.Next() {
		var e WatchedEpisode
		if err := rows.Scan(&e.EpisodeID, &e.SeasonNumber, &e.EpisodeNumber, &e.WatchedAt); err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}
