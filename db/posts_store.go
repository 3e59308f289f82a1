package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"explore-api/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresPostStore implements models.PostStore against the posts table.
type PostgresPostStore struct {
	db *sql.DB
}

func NewPostStore(database *sql.DB) *PostgresPostStore {
	return &PostgresPostStore{db: database}
}

const postColumns = `p.id, p.title, p.body, p.html_body, p.author, p.image, p.status, p.tags, p.created_at, p.updated_at`

func (s *PostgresPostStore) Create(ctx context.Context, post *models.Post) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, body, html_body, author, image, status, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		post.Title, post.Body, post.HTMLBody, post.AuthorID, post.Image, post.Status, pq.Array(post.Tags)).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting post: %w", err)
	}
	return nil
}

func (s *PostgresPostStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
	return scanPost(row)
}

func (s *PostgresPostStore) GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+`, u.id, u.username
		 FROM posts p JOIN users u ON u.id = p.author
		 WHERE p.id = $1 AND p.status = $2`, id, models.StatusPublished)
	return scanPostWithAuthor(row)
}

func (s *PostgresPostStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+`, u.id, u.username
		 FROM posts p JOIN users u ON u.id = p.author
		 WHERE p.status = $1
		 ORDER BY p.created_at DESC`, models.StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("error querying published posts: %w", err)
	}
	return collectPosts(rows)
}

func (s *PostgresPostStore) ListByAuthor(ctx context.Context, author uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+`, u.id, u.username
		 FROM posts p JOIN users u ON u.id = p.author
		 WHERE p.author = $1
		 ORDER BY p.created_at DESC`, author)
	if err != nil {
		return nil, fmt.Errorf("error querying posts by author: %w", err)
	}
	return collectPosts(rows)
}

func (s *PostgresPostStore) Save(ctx context.Context, post *models.Post) error {
	err := s.db.QueryRowContext(ctx,
		`UPDATE posts
		 SET title = $1, body = $2, html_body = $3, image = $4, status = $5, tags = $6, updated_at = now()
		 WHERE id = $7
		 RETURNING updated_at`,
		post.Title, post.Body, post.HTMLBody, post.Image, post.Status, pq.Array(post.Tags), post.ID).
		Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrPostNotFound
		}
		return fmt.Errorf("error updating post %s: %w", post.ID, err)
	}
	return nil
}

func (s *PostgresPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking delete result: %w", err)
	}
	if affected == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

func scanPost(row *sql.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Body, &post.HTMLBody, &post.AuthorID,
		&post.Image, &post.Status, pq.Array(&post.Tags), &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPostNotFound
		}
		return nil, fmt.Errorf("error scanning post: %w", err)
	}
	return &post, nil
}

func scanPostWithAuthor(row *sql.Row) (*models.Post, error) {
	var post models.Post
	var author models.AuthorInfo
	err := row.Scan(&post.ID, &post.Title, &post.Body, &post.HTMLBody, &post.AuthorID,
		&post.Image, &post.Status, pq.Array(&post.Tags), &post.CreatedAt, &post.UpdatedAt,
		&author.ID, &author.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPostNotFound
		}
		return nil, fmt.Errorf("error scanning post: %w", err)
	}
	post.Author = &author
	return &post, nil
}

func collectPosts(rows *sql.Rows) (posts []models.Post, err error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var post models.Post
		var author models.AuthorInfo
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.HTMLBody, &post.AuthorID,
			&post.Image, &post.Status, pq.Array(&post.Tags), &post.CreatedAt, &post.UpdatedAt,
			&author.ID, &author.Username); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		post.Author = &author
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return posts, nil
}
