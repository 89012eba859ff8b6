package videos

import (
	"context"
	"errors"
	"fmt"

	"celflicks/internal/db"
	"celflicks/internal/platform"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pg error helpers (kept local to repository)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// invalid uuid text is reported by postgres as 22P02; for lookups by id it
// simply means no such row.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isVideoID rejects ids postgres would fail to cast, before a transaction is
// opened; a failed statement aborts the transaction and its commit.
func isVideoID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Store {
	return &Repository{db: q}
}

const videoColumns = `
  id::text, title, video_url,
  COALESCE(platform, 'other'), COALESCE(youtube_id, ''), COALESCE(description, ''),
  COALESCE(tags, '{}'::text[]), COALESCE(thumbnail, ''),
  created_at, updated_at`

func scanVideo(row pgx.Row) (*Video, error) {
	var (
		v    Video
		plat string
	)
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.SourceURL,
		&plat,
		&v.ExternalID,
		&v.Description,
		&v.Tags,
		&v.ThumbnailURL,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Platform = platform.Platform(plat)
	return &v, nil
}

// ------------------- Videos -------------------

// ListVideos returns every video in insertion order.
func (r *Repository) ListVideos(ctx context.Context) ([]Video, error) {
	rows, err := r.db.Query(ctx, `SELECT`+videoColumns+`
FROM videos
ORDER BY created_at ASC, id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	out := make([]Video, 0, 32)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("videos rows error: %w", err)
	}
	return out, nil
}

// CreateVideo inserts without an id; the database assigns the canonical one.
func (r *Repository) CreateVideo(ctx context.Context, v Video) (*Video, error) {
	q := `
INSERT INTO videos (title, video_url, platform, youtube_id, description, tags, thumbnail)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
RETURNING` + videoColumns + `;`

	out, err := scanVideo(r.db.QueryRow(ctx, q,
		v.Title,
		v.SourceURL,
		string(v.Platform),
		v.ExternalID,
		v.Description,
		v.Tags,
		v.ThumbnailURL,
	))
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return out, nil
}

// UpdateVideo writes the full record keyed by id.
func (r *Repository) UpdateVideo(ctx context.Context, id string, v Video) (*Video, error) {
	q := `
UPDATE videos
SET title = $1,
    video_url = $2,
    platform = $3,
    youtube_id = $4,
    description = $5,
    tags = $6,
    thumbnail = NULLIF($7, ''),
    updated_at = now()
WHERE id = $8::uuid
RETURNING` + videoColumns + `;`

	out, err := scanVideo(r.db.QueryRow(ctx, q,
		v.Title,
		v.SourceURL,
		string(v.Platform),
		v.ExternalID,
		v.Description,
		v.Tags,
		v.ThumbnailURL,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return out, nil
}

func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	const q = `
DELETE FROM videos
WHERE id = $1::uuid
RETURNING id;
`
	var deletedID string
	if err := r.db.QueryRow(ctx, q, id).Scan(&deletedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

// ------------------- Featured entries -------------------

func collectEntries(rows pgx.Rows) ([]FeaturedEntry, error) {
	defer rows.Close()

	out := make([]FeaturedEntry, 0, 16)
	for rows.Next() {
		var (
			e   FeaturedEntry
			cat string
		)
		if err := rows.Scan(&e.ID, &e.VideoID, &cat, &e.Position); err != nil {
			return nil, fmt.Errorf("scan featured row: %w", err)
		}
		e.Category = Category(cat)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("featured rows error: %w", err)
	}
	return out, nil
}

func (r *Repository) ListFeatured(ctx context.Context) ([]FeaturedEntry, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, video_id::text, category, position
FROM featured_videos
ORDER BY position ASC, id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("query featured videos: %w", err)
	}
	return collectEntries(rows)
}

func (r *Repository) ListFeaturedByCategory(ctx context.Context, c Category) ([]FeaturedEntry, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, video_id::text, category, position
FROM featured_videos
WHERE category = $1
ORDER BY position ASC, id ASC;
`, string(c))
	if err != nil {
		return nil, fmt.Errorf("query featured videos by category: %w", err)
	}
	return collectEntries(rows)
}

func (r *Repository) CreateFeatured(ctx context.Context, e FeaturedEntry) (*FeaturedEntry, error) {
	const q = `
INSERT INTO featured_videos (video_id, category, position)
VALUES ($1::uuid, $2, $3)
RETURNING id, video_id::text, category, position;
`
	var (
		out FeaturedEntry
		cat string
	)
	err := r.db.QueryRow(ctx, q, e.VideoID, string(e.Category), e.Position).
		Scan(&out.ID, &out.VideoID, &cat, &out.Position)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFeatured
		}
		if isFKViolation(err) || isInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("create featured video: %w", err)
	}
	out.Category = Category(cat)
	return &out, nil
}

// DeleteFeatured removes one entry and closes the gap it leaves. Deleting an
// absent entry is a no-op.
func (r *Repository) DeleteFeatured(ctx context.Context, videoID string, c Category) error {
	if !isVideoID(videoID) {
		return nil
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var position int
		err := tx.QueryRow(ctx, `
DELETE FROM featured_videos
WHERE video_id = $1::uuid AND category = $2
RETURNING position;
`, videoID, string(c)).Scan(&position)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("delete featured video: %w", err)
		}
		return compact(ctx, tx, c, position)
	})
}

// DeleteFeaturedByVideo removes the video from every category, compacting
// each category it was in.
func (r *Repository) DeleteFeaturedByVideo(ctx context.Context, videoID string) error {
	if !isVideoID(videoID) {
		return nil
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
DELETE FROM featured_videos
WHERE video_id = $1::uuid
RETURNING id, video_id::text, category, position;
`, videoID)
		if err != nil {
			return fmt.Errorf("delete featured entries for video: %w", err)
		}
		removed, err := collectEntries(rows)
		if err != nil {
			return err
		}
		for _, e := range removed {
			if err := compact(ctx, tx, e.Category, e.Position); err != nil {
				return err
			}
		}
		return nil
	})
}

func compact(ctx context.Context, tx pgx.Tx, c Category, removed int) error {
	_, err := tx.Exec(ctx, `
UPDATE featured_videos
SET position = position - 1
WHERE category = $1 AND position > $2;
`, string(c), removed)
	if err != nil {
		return fmt.Errorf("compact featured positions: %w", err)
	}
	return nil
}

// SwapPositions relies on the (category, position) constraint being
// deferred so the intermediate duplicate never fails the batch.
func (r *Repository) SwapPositions(ctx context.Context, a, b FeaturedEntry) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		const q = `UPDATE featured_videos SET position = $2 WHERE id = $1;`

		batch := &pgx.Batch{}
		batch.Queue(q, a.ID, b.Position)
		batch.Queue(q, b.ID, a.Position)

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return fmt.Errorf("swap featured positions: %w", err)
			}
			if tag.RowsAffected() != 1 {
				br.Close()
				return ErrNotFound
			}
		}
		return br.Close()
	})
}
