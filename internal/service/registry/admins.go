package registry

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// IsAdmin сообщает, есть ли пользователь в списке админов.
func (r *Registry) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return false, err
	}
	defer r.pool.Put(conn)

	var admin bool
	err = sqlitex.Execute(conn,
		"SELECT 1 FROM admins WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{userID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				admin = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("registry: is admin: %w", err)
	}
	return admin, nil
}

// AddAdmin добавляет админа. Повторное добавление не является ошибкой.
func (r *Registry) AddAdmin(ctx context.Context, userID int64) error {
	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"INSERT OR IGNORE INTO admins (id) VALUES (?)",
		&sqlitex.ExecOptions{Args: []any{userID}})
	if err != nil {
		return fmt.Errorf("registry: add admin: %w", err)
	}
	return nil
}

// RemoveAdmin убирает пользователя из списка админов.
func (r *Registry) RemoveAdmin(ctx context.Context, userID int64) error {
	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"DELETE FROM admins WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{userID}})
	if err != nil {
		return fmt.Errorf("registry: remove admin: %w", err)
	}
	return nil
}

// Admins возвращает id всех админов по возрастанию.
func (r *Registry) Admins(ctx context.Context) ([]int64, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var ids []int64
	err = sqlitex.Execute(conn,
		"SELECT id FROM admins ORDER BY id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ids = append(ids, stmt.ColumnInt64(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("registry: admins: %w", err)
	}
	return ids, nil
}
