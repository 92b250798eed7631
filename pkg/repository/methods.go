package repository

import (
	"context"
	"time"

	"nasapuff"
	"nasapuff/pkg/consts"

	"github.com/jmoiron/sqlx"
)

// Queries use ? placeholders and go through Rebind, so the same text serves postgres and sqlite.
const (
	queryInsert = `INSERT INTO pictures
				   ("date", title, url, hd_url, thumbnail_url, media_type, copyright, explanation)
				   VALUES(?, ?, ?, ?, ?, ?, ?, ?)
				   ON CONFLICT ("date") DO UPDATE SET
				   title = excluded.title, url = excluded.url, hd_url = excluded.hd_url,
				   thumbnail_url = excluded.thumbnail_url, media_type = excluded.media_type,
				   copyright = excluded.copyright, explanation = excluded.explanation`

	queryGetByDate = `SELECT "date", title, url, hd_url, thumbnail_url, media_type, copyright, explanation
					  FROM pictures WHERE "date" = ?`

	queryGetByDateRange = `SELECT "date", title, url, hd_url, thumbnail_url, media_type, copyright, explanation
					 	   FROM pictures WHERE "date" >= ? AND "date" <= ? ORDER BY "date"`

	queryDeleteByDate = `DELETE FROM pictures WHERE "date" = ?`
)

type Actions struct {
	db *sqlx.DB
}

func NewActions(db *sqlx.DB) *Actions {
	return &Actions{db}
}

// InsertOne upserts the record under its own date, or today's when the record has none.
func (r *Actions) InsertOne(ctx context.Context, d *nasapuff.ApodModel) (int64, error) {

	date := d.Date
	if date == "" {
		date = time.Now().Format(consts.TimeFormat)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(queryInsert), date, d.Title, d.URL, d.HDURL, d.ThumbURL, d.MediaType, d.Copyright, d.Explanation)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetByDate returns nil, nil when nothing is stored for date.
func (r *Actions) GetByDate(ctx context.Context, date time.Time) (*nasapuff.ApodModel, error) {

	var picture []nasapuff.ApodModel
	if err := r.db.SelectContext(ctx, &picture, r.db.Rebind(queryGetByDate), date.Format(consts.TimeFormat)); err != nil {
		return nil, err
	}

	if len(picture) == 0 {
		return nil, nil
	}

	return &picture[0], nil
}

func (r *Actions) GetByDateRange(ctx context.Context, start, end time.Time) ([]nasapuff.ApodModel, error) {

	var pictures []nasapuff.ApodModel
	if err := r.db.SelectContext(ctx, &pictures, r.db.Rebind(queryGetByDateRange), start.Format(consts.TimeFormat), end.Format(consts.TimeFormat)); err != nil {
		return nil, err
	}

	return pictures, nil
}

func (r *Actions) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {

	res, err := r.db.ExecContext(ctx, r.db.Rebind(queryDeleteByDate), date.Format(consts.TimeFormat))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
