package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"estate-service/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, title, price, images, address, city, bedrooms, bathrooms, latitude, longitude, type, property, description, user_id, created_at`

// PostRepository abstracts listing persistence.
type PostRepository interface {
	SearchPosts(ctx context.Context, filter models.PostFilter, page, perPage int) ([]models.Post, int, error)
	GetPost(ctx context.Context, id int) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (models.Post, error)
	DeletePost(ctx context.Context, id int) error
	ToggleSave(ctx context.Context, userID, postID int) (bool, error)
	IsSaved(ctx context.Context, userID, postID int) (bool, error)
	SavedPostIDs(ctx context.Context, userID int) (map[int]bool, error)
	ListUserPosts(ctx context.Context, userID int) ([]models.Post, error)
	ListSavedPosts(ctx context.Context, userID int) ([]models.Post, error)
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

// SearchPosts runs the filtered page and its total count in one transaction
// so both observe the same snapshot.
func (r *PostRepo) SearchPosts(ctx context.Context, filter models.PostFilter, page, perPage int) ([]models.Post, int, error) {
	where, args := buildPostFilter(filter)

	skip := (page - 1) * perPage
	if skip < 0 {
		skip = 0
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM posts WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		postColumns, where, perPage, skip)
	var posts []models.Post
	if err := tx.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func buildPostFilter(filter models.PostFilter) (string, []any) {
	maxPrice := filter.MaxPrice
	if maxPrice <= 0 {
		maxPrice = models.DefaultMaxPrice
	}
	clauses := []string{"price >= $1", "price <= $2"}
	args := []any{filter.MinPrice, maxPrice}

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.City != "" {
		add("city = $%d", filter.City)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Property != "" {
		add("property = $%d", filter.Property)
	}
	if filter.Bedrooms > 0 {
		add("bedrooms = $%d", filter.Bedrooms)
	}
	if filter.Bathrooms > 0 {
		add("bathrooms = $%d", filter.Bathrooms)
	}
	return strings.Join(clauses, " AND "), args
}

// GetPost fetches a post joined with its owner's projection.
func (r *PostRepo) GetPost(ctx context.Context, id int) (models.Post, error) {
	var row struct {
		models.Post
		Owner models.UserSummary `db:"owner"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT
            p.id, p.title, p.price, p.images, p.address, p.city, p.bedrooms, p.bathrooms,
            p.latitude, p.longitude, p.type, p.property, p.description, p.user_id, p.created_at,
            u.id AS "owner.id", u.first_name AS "owner.first_name", u.last_name AS "owner.last_name",
            u.avatar AS "owner.avatar", u.phone_number AS "owner.phone_number"
        FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	post := row.Post
	owner := row.Owner
	post.User = &owner
	return post, nil
}

func (r *PostRepo) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	var created models.Post
	err := r.db.GetContext(ctx, &created, `INSERT INTO posts
            (title, price, images, address, city, bedrooms, bathrooms, latitude, longitude, type, property, description, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+postColumns,
		post.Title, post.Price, pq.Array(post.Images), post.Address, post.City, post.Bedrooms, post.Bathrooms,
		post.Latitude, post.Longitude, post.Type, post.Property, post.Description, post.UserID)
	return created, err
}

// UpdatePost applies a full field merge keyed by post.ID.
func (r *PostRepo) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	var updated models.Post
	err := r.db.GetContext(ctx, &updated, `UPDATE posts SET
            title=$2, price=$3, images=$4, address=$5, city=$6, bedrooms=$7, bathrooms=$8,
            latitude=$9, longitude=$10, type=$11, property=$12, description=$13
        WHERE id=$1 RETURNING `+postColumns,
		post.ID, post.Title, post.Price, pq.Array(post.Images), post.Address, post.City, post.Bedrooms,
		post.Bathrooms, post.Latitude, post.Longitude, post.Type, post.Property, post.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	return updated, err
}

// DeletePost removes the post and every saved-post row referencing it in one
// transaction; either both deletions commit or neither does.
func (r *PostRepo) DeletePost(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_posts WHERE post_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return tx.Commit()
}

// ToggleSave flips the saved state of (userID, postID) and reports the state
// after the call. The UNIQUE constraint makes concurrent duplicate saves
// collapse into a no-op insert.
func (r *PostRepo) ToggleSave(ctx context.Context, userID, postID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_posts WHERE user_id=$1 AND post_id=$2`, userID, postID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO saved_posts (user_id, post_id) VALUES ($1, $2)
        ON CONFLICT (user_id, post_id) DO NOTHING`, userID, postID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostRepo) IsSaved(ctx context.Context, userID, postID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM saved_posts WHERE user_id=$1 AND post_id=$2)`, userID, postID)
	return exists, err
}

// SavedPostIDs returns the set of post ids the user has saved.
func (r *PostRepo) SavedPostIDs(ctx context.Context, userID int) (map[int]bool, error) {
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, `SELECT post_id FROM saved_posts WHERE user_id=$1`, userID); err != nil {
		return nil, err
	}
	saved := make(map[int]bool, len(ids))
	for _, id := range ids {
		saved[id] = true
	}
	return saved, nil
}

func (r *PostRepo) ListUserPosts(ctx context.Context, userID int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	return posts, err
}

func (r *PostRepo) ListSavedPosts(ctx context.Context, userID int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, `SELECT `+qualifiedPostColumns("p")+` FROM posts p
        JOIN saved_posts sp ON sp.post_id = p.id
        WHERE sp.user_id=$1 ORDER BY sp.created_at DESC`, userID)
	return posts, err
}

func qualifiedPostColumns(alias string) string {
	cols := strings.Split(postColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
