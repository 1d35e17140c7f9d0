package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/commhub/internal/domain"
	"github.com/samber/lo"
	"github.com/surrealdb/surrealdb.go"
)

// userFields projects a user record with its record id flattened to the
// integer the rest of the system works with.
const userFields = "record::id(id) AS id, name, email, password"

// userRow is the decode target for user queries. domain.User hides the
// password hash from serialization with `json:"-"`, which the SDK's CBOR
// decoders also honor, so reads need their own shape to get the hash back.
type userRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// UserStore encapsulates database operations for users.
type UserStore struct {
	db *surrealdb.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *surrealdb.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user with a sequence-assigned integer id. The email
// uniqueness check runs first so callers get domain.ErrUserAlreadyExists
// instead of a raw index violation; the unique index on user.email still
// backstops the race where two registrations pass the check together.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	query := `
		SELECT ` + userFields + ` FROM (
			CREATE ONLY type::thing('user', (UPSERT ONLY seq:user SET value += 1).value) CONTENT {
				name: $name,
				email: $email,
				password: $password
			}
		)
	`
	params := map[string]any{
		"name":     name,
		"email":    email,
		"password": passwordHash,
	}

	row, err := QueryOne[userRow](ctx, s.db, query, params)
	if err != nil {
		if isUniqueIndexViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("failed to create user: empty result")
	}

	user := row.toDomain()
	return &user, nil
}

// FindByEmail queries for a single user by their email address.
// Returns nil, nil when no user matches.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT " + userFields + " FROM user WHERE email = $email"
	params := map[string]any{"email": email}

	row, err := QueryOne[userRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	user := row.toDomain()
	return &user, nil
}

// FindByID queries for a single user by id. Returns nil, nil when absent.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := "SELECT " + userFields + " FROM type::thing('user', $id)"
	params := map[string]any{"id": id}

	row, err := QueryOne[userRow](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	user := row.toDomain()
	return &user, nil
}

// List returns all registered users ordered by id. Password hashes are not
// projected; this feeds the roster endpoint.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	query := "SELECT record::id(id) AS id, name, email FROM user ORDER BY id ASC"

	rows, err := Query[userRow](ctx, s.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return lo.Map(rows, func(r userRow, _ int) domain.User {
		return r.toDomain()
	}), nil
}

// isUniqueIndexViolation matches SurrealDB's unique index error, e.g.
// "Database index `user_email_unique` already contains 'a@b.c'".
func isUniqueIndexViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}
