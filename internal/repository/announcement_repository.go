package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/meuresidencial/condo-api/internal/model"
)

// AnnouncementRepo provides CRUD over the `announcements` table.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

const announcementCols = `id,matricula,title,content,sent_email,sent_whatsapp,created_at,updated_at`

func scanAnnouncement(row interface{ Scan(...any) error }) (model.Announcement, error) {
	var a model.Announcement
	err := row.Scan(&a.ID, &a.Matricula, &a.Title, &a.Content,
		&a.SentEmail, &a.SentWhatsApp, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ListByMatricula returns the condominium's announcements, newest first.
func (r *AnnouncementRepo) ListByMatricula(ctx context.Context, matricula string) ([]model.Announcement, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+announcementCols+" FROM announcements WHERE matricula=? ORDER BY created_at DESC", matricula)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID fetches one announcement scoped by matricula.
func (r *AnnouncementRepo) GetByID(ctx context.Context, id, matricula string) (model.Announcement, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+announcementCols+" FROM announcements WHERE id=? AND matricula=? LIMIT 1", id, matricula)
	a, err := scanAnnouncement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Announcement{}, ErrNotFound
	}
	return a, err
}

// Create inserts an announcement, generating the UUID when absent.
func (r *AnnouncementRepo) Create(ctx context.Context, a *model.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO announcements (id, matricula, title, content, sent_email, sent_whatsapp)
		 VALUES (?,?,?,?,?,?)`,
		a.ID, a.Matricula, a.Title, a.Content, a.SentEmail, a.SentWhatsApp)
	return err
}

// Update rewrites title/content and the requested delivery channels.
func (r *AnnouncementRepo) Update(ctx context.Context, a *model.Announcement) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE announcements SET title=?, content=?, sent_email=?, sent_whatsapp=?
		 WHERE id=? AND matricula=?`,
		a.Title, a.Content, a.SentEmail, a.SentWhatsApp, a.ID, a.Matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Delete removes an announcement scoped by matricula.
func (r *AnnouncementRepo) Delete(ctx context.Context, id, matricula string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM announcements WHERE id=? AND matricula=?", id, matricula)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
