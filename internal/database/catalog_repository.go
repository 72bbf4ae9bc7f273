package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cinestream/models"
)

// CatalogRepository persists resolved catalog items. Movies and series are
// stored in separate tables with an identical shape.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func tableFor(ct models.ContentType) (string, error) {
	switch ct {
	case models.ContentTypeMovie:
		return "movies", nil
	case models.ContentTypeSeries:
		return "series", nil
	default:
		return "", fmt.Errorf("unknown content type %q", ct)
	}
}

const itemColumns = `id, tmdb_id, title, overview, poster_path, backdrop_path,
	slug, release_year, rating, genres, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }, ct models.ContentType) (*models.CatalogItem, error) {
	var item models.CatalogItem
	var genres string
	err := row.Scan(&item.ID, &item.TMDBID, &item.Title, &item.Overview,
		&item.PosterPath, &item.BackdropPath, &item.Slug, &item.ReleaseYear,
		&item.Rating, &genres, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Type = ct
	if genres != "" {
		if err := json.Unmarshal([]byte(genres), &item.Genres); err != nil {
			return nil, fmt.Errorf("decode genres for %s: %w", item.ID, err)
		}
	}
	return &item, nil
}

// FindByExternalID looks up an item by its provider identifier. A missing
// row is not an error: it returns (nil, nil) so callers can distinguish
// "not synced yet" from a storage failure.
func (r *CatalogRepository) FindByExternalID(ctx context.Context, ct models.ContentType, tmdbID int64) (*models.CatalogItem, error) {
	table, err := tableFor(ct)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE tmdb_id = ?", itemColumns, table)
	item, err := scanItem(r.db.QueryRowContext(ctx, query, tmdbID), ct)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s by tmdb id: %w", table, err)
	}
	return item, nil
}

// FindByLocalID looks up an item by its locally assigned identifier,
// checking both content tables. Returns (nil, nil) when absent.
func (r *CatalogRepository) FindByLocalID(ctx context.Context, id string) (*models.CatalogItem, error) {
	for _, ct := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries} {
		table, _ := tableFor(ct)
		query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", itemColumns, table)
		item, err := scanItem(r.db.QueryRowContext(ctx, query, id), ct)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("query %s by id: %w", table, err)
		}
		return item, nil
	}
	return nil, nil
}

// Insert writes a newly resolved item. A conflicting tmdb_id is silently
// ignored so that the loser of a concurrent first-time resolution can fall
// through to a re-query instead of erroring.
func (r *CatalogRepository) Insert(ctx context.Context, item *models.CatalogItem) error {
	table, err := tableFor(item.Type)
	if err != nil {
		return err
	}

	genres, err := json.Marshal(item.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s
		(id, tmdb_id, title, overview, poster_path, backdrop_path, slug,
		 release_year, rating, genres, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tmdb_id) DO NOTHING`, table)

	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.TMDBID, item.Title, item.Overview, item.PosterPath,
		item.BackdropPath, item.Slug, item.ReleaseYear, item.Rating,
		string(genres), now, now)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// UpdateMetadata refreshes the mutable provider-sourced fields of a stored
// item. Identity fields (id, tmdb_id, created_at) are never touched.
func (r *CatalogRepository) UpdateMetadata(ctx context.Context, item *models.CatalogItem) error {
	table, err := tableFor(item.Type)
	if err != nil {
		return err
	}

	genres, err := json.Marshal(item.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET title = ?, overview = ?, poster_path = ?,
		backdrop_path = ?, slug = ?, release_year = ?, rating = ?, genres = ?,
		updated_at = ? WHERE id = ?`, table)

	_, err = r.db.ExecContext(ctx, query,
		item.Title, item.Overview, item.PosterPath, item.BackdropPath,
		item.Slug, item.ReleaseYear, item.Rating, string(genres),
		time.Now().UTC(), item.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// List returns stored items of one content type, newest first.
func (r *CatalogRepository) List(ctx context.Context, ct models.ContentType, limit int) ([]*models.CatalogItem, error) {
	table, err := tableFor(ct)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id LIMIT ?", itemColumns, table)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []*models.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows, ct)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
