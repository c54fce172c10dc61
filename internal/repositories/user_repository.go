package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"estate-service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already used")
)

const userColumns = `id, email, password, first_name, last_name, avatar, phone_number, created_at`

// CreateUserParams carries the fields of a registration. Password must
// already be hashed.
type CreateUserParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Avatar      string
	PhoneNumber string
}

// UpdateUserParams is a partial profile update; nil fields are left
// untouched. Password, when set, must already be hashed.
type UpdateUserParams struct {
	Email       *string
	FirstName   *string
	LastName    *string
	Avatar      *string
	PhoneNumber *string
	Password    *string
}

// UserRepository abstracts user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, params UpdateUserParams) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	GetUserSummary(ctx context.Context, id int) (models.UserSummary, error)
	GetUserSummaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new user; a duplicate email maps to ErrEmailTaken.
func (r *UserRepo) CreateUser(ctx context.Context, params CreateUserParams) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `INSERT INTO users (email, password, first_name, last_name, avatar, phone_number)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+userColumns,
		params.Email, params.Password, params.FirstName, params.LastName, params.Avatar, params.PhoneNumber)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) GetUser(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	return users, err
}

// UpdateUser applies a partial update and returns the resulting row.
func (r *UserRepo) UpdateUser(ctx context.Context, id int, params UpdateUserParams) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET
            email = COALESCE($2, email),
            first_name = COALESCE($3, first_name),
            last_name = COALESCE($4, last_name),
            avatar = COALESCE($5, avatar),
            phone_number = COALESCE($6, phone_number),
            password = COALESCE($7, password)
        WHERE id=$1 RETURNING `+userColumns,
		id, params.Email, params.FirstName, params.LastName, params.Avatar, params.PhoneNumber, params.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes the account; owned posts, saved posts, chats and
// messages cascade at the store level.
func (r *UserRepo) DeleteUser(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) GetUserSummary(ctx context.Context, id int) (models.UserSummary, error) {
	var summary models.UserSummary
	err := r.db.GetContext(ctx, &summary, `SELECT id, first_name, last_name, avatar, phone_number FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserSummary{}, ErrUserNotFound
	}
	return summary, err
}

// GetUserSummaries bulk-fetches projections keyed by user id.
func (r *UserRepo) GetUserSummaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error) {
	result := make(map[int]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var summaries []models.UserSummary
	err := r.db.SelectContext(ctx, &summaries, `SELECT id, first_name, last_name, avatar, phone_number FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		result[s.ID] = s
	}
	return result, nil
}
