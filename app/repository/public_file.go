package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-blog/app/entity"
)

type PublicFileRepository struct {
	db *sql.DB
}

func NewPublicFileRepository(db *sql.DB) *PublicFileRepository {
	return &PublicFileRepository{db: db}
}

func (r *PublicFileRepository) Create(ctx context.Context, file *entity.PublicFile) error {
	query := `INSERT INTO public_files (storage_key, url) VALUES (?, ?)`
	result, err := r.db.ExecContext(ctx, query, file.Key, file.URL)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	file.ID = uint64(id)
	return nil
}

func (r *PublicFileRepository) FindByID(ctx context.Context, id uint64) (*entity.PublicFile, error) {
	query := `SELECT id, storage_key, url FROM public_files WHERE id = ?`
	file := &entity.PublicFile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&file.ID, &file.Key, &file.URL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *PublicFileRepository) Delete(ctx context.Context, id uint64) error {
	query := `DELETE FROM public_files WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
