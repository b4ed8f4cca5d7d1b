package models

import (
	"database/sql"
	"time"
)

// WatchlistItem is a title a user intends to watch, either type.
type WatchlistItem struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Provider    string    `json:"provider"`
	ContentID   string    `json:"content_id"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	PosterURL   *string   `json:"poster_url"`
	AddedAt     time.Time `json:"added_at"`
}

type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func (r *WatchlistRepository) Add(item *WatchlistItem) error {
	result, err := r.db.Exec(`
        INSERT INTO watchlist (user_id, provider, content_id, content_type, title, year, poster_url)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, item.UserID, item.Provider, item.ContentID, item.ContentType, item.Title, item.Year, item.PosterURL)
	if err != nil {
		return err
	}

	id, _ := result.LastInsertId()
	item.ID = id
	item.AddedAt = time.Now()
	return nil
}

func (r *WatchlistRepository) Remove(userID, id int64) error {
	_, err := r.db.Exec("DELETE FROM watchlist WHERE id = ? AND user_id = ?", id, userID)
	return err
}

func (r *WatchlistRepository) ListByUser(userID int64) ([]WatchlistItem, error) {
	rows, err := r.db.Query(`
        SELECT id, user_id, provider, content_id, content_type, title, year, poster_url, added_at
        FROM watchlist WHERE user_id = ? ORDER BY added_at DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WatchlistItem
	for rows.Next() {
		var item WatchlistItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Provider, &item.ContentID,
			&item.ContentType, &item.Title, &item.Year, &item.PosterURL, &item.AddedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
