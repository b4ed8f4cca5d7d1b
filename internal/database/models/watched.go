package models

import (
	"database/sql"
	"time"
)

// WatchedMovie is a movie a user marked as seen, with a denormalized
// snapshot of the metadata that was on screen when they marked it.
type WatchedMovie struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Provider  string    `json:"provider"`
	ContentID string    `json:"content_id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	PosterURL *string   `json:"poster_url"`
	WatchedAt time.Time `json:"watched_at"`
}

type WatchedRepository struct {
	db *sql.DB
}

func NewWatchedRepository(db *sql.DB) *WatchedRepository {
	return &WatchedRepository{db: db}
}

func (r *WatchedRepository) Add(movie *WatchedMovie) error {
	result, err := r.db.Exec(`
        INSERT INTO watched_movies (user_id, provider, content_id, title, year, poster_url)
        VALUES (?, ?, ?, ?, ?, ?)
    `, movie.UserID, movie.Provider, movie.ContentID, movie.Title, movie.Year, movie.PosterURL)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	movie.ID = id
	movie.WatchedAt = time.Now()
	return nil
}

func (r *WatchedRepository) Remove(userID, id int64) error {
	_, err := r.db.Exec("DELETE FROM watched_movies WHERE id = ? AND user_id = ?", id, userID)
	return err
}

func (r *WatchedRepository) ListByUser(userID int64) ([]WatchedMovie, error) {
	rows, err := r.db.Query(`
        SELECT id, user_id, provider, content_id, title, year, poster_url, watched_at
        FROM watched_movies WHERE user_id = ? ORDER BY watched_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []WatchedMovie
	for rows.Next() {
		var m WatchedMovie
		err := rows.Scan(&m.ID, &m.UserID, &m.Provider, &m.ContentID, &m.Title,
			&m.Year, &m.PosterURL, &m.WatchedAt)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}
