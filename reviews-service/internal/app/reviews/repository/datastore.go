package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	serviceName = "reviews-service"

	pgForeignKeyViolation = "23503"
)

// gormDatastore реализует Datastore поверх *gorm.DB
// Внутри транзакции db указывает на tx, поэтому все репозитории видят одни и те же изменения
type gormDatastore struct {
	db       *gorm.DB
	reviews  ReviewRepository
	products ProductRepository
	users    UserRepository
}

// NewDatastore создает Datastore. Соединение создаётся в main и передаётся явно
func NewDatastore(db *gorm.DB) Datastore {
	return &gormDatastore{
		db:       db,
		reviews:  NewReviewRepository(db),
		products: NewProductRepository(db),
		users:    NewUserRepository(db),
	}
}

func (d *gormDatastore) Reviews() ReviewRepository {
	return d.reviews
}

func (d *gormDatastore) Products() ProductRepository {
	return d.products
}

func (d *gormDatastore) Users() UserRepository {
	return d.users
}

// Transaction коммитит, если fn вернула nil, иначе откатывает и возвращает ошибку fn
func (d *gormDatastore) Transaction(ctx context.Context, fn func(tx Datastore) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDatastore(tx))
	})
}

// wrapWriteError добавляет ErrForeignKey в цепочку для ошибок 23503
// Если по ограничению видно, какая строка пропала, добавляет ErrUserNotFound или ErrProductNotFound
func wrapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		if missing := missingReference(pgErr); missing != nil {
			return fmt.Errorf("failed to %s: %w: %w: %w", op, ErrForeignKey, missing, err)
		}
		return fmt.Errorf("failed to %s: %w: %w", op, ErrForeignKey, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// missingReference смотрит на имя ограничения и на detail вида
// Key (user_id)=(10) is not present in table "users".
func missingReference(pgErr *pgconn.PgError) error {
	switch {
	case strings.Contains(pgErr.ConstraintName, "user") || strings.Contains(pgErr.Detail, "(user_id)"):
		return ErrUserNotFound
	case strings.Contains(pgErr.ConstraintName, "product") || strings.Contains(pgErr.Detail, "(product_id)"):
		return ErrProductNotFound
	}
	return nil
}
