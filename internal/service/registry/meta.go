package registry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	metaAutoDeleteEnabled = "auto_delete_enabled"
	metaAutoDeleteSeconds = "auto_delete_seconds"
)

// SeedAutoDelete записывает настройки auto-delete, если их ещё нет.
// Вызывается один раз при старте бота; последующие перезапуски не
// перетирают значение, выставленное через /autodelete.
func (r *Registry) SeedAutoDelete(ctx context.Context, age time.Duration) error {
	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	enabled := "0"
	if age > 0 {
		enabled = "1"
	}
	seconds := strconv.FormatInt(int64(age/time.Second), 10)

	seeds := [][2]string{
		{metaAutoDeleteEnabled, enabled},
		{metaAutoDeleteSeconds, seconds},
	}
	for _, kv := range seeds {
		err = sqlitex.Execute(conn,
			"INSERT OR IGNORE INTO meta (k, v) VALUES (?, ?)",
			&sqlitex.ExecOptions{Args: []any{kv[0], kv[1]}})
		if err != nil {
			return fmt.Errorf("registry: seed auto-delete: %w", err)
		}
	}
	return nil
}

// SetAutoDelete включает или выключает auto-delete. При включении age
// должен быть положительным.
func (r *Registry) SetAutoDelete(ctx context.Context, enabled bool, age time.Duration) error {
	if enabled && age <= 0 {
		return fmt.Errorf("registry: set auto-delete: age must be positive")
	}

	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	enabledValue := "0"
	if enabled {
		enabledValue = "1"
	}

	values := [][2]string{
		{metaAutoDeleteEnabled, enabledValue},
	}
	if enabled {
		values = append(values, [2]string{
			metaAutoDeleteSeconds,
			strconv.FormatInt(int64(age/time.Second), 10),
		})
	}

	for _, kv := range values {
		err = sqlitex.Execute(conn,
			"INSERT INTO meta (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
			&sqlitex.ExecOptions{Args: []any{kv[0], kv[1]}})
		if err != nil {
			return fmt.Errorf("registry: set auto-delete: %w", err)
		}
	}
	return nil
}

// AutoDelete возвращает текущие настройки auto-delete.
func (r *Registry) AutoDelete(ctx context.Context) (enabled bool, age time.Duration, err error) {
	conn, err := r.take(ctx)
	if err != nil {
		return false, 0, err
	}
	defer r.pool.Put(conn)

	enabledValue, err := metaGet(conn, metaAutoDeleteEnabled)
	if err != nil {
		return false, 0, err
	}
	secondsValue, err := metaGet(conn, metaAutoDeleteSeconds)
	if err != nil {
		return false, 0, err
	}

	seconds, parseErr := strconv.ParseInt(secondsValue, 10, 64)
	if parseErr != nil || seconds < 0 {
		seconds = 0
	}

	return enabledValue == "1", time.Duration(seconds) * time.Second, nil
}

func metaGet(conn *sqlite.Conn, key string) (string, error) {
	var value string
	err := sqlitex.Execute(conn,
		"SELECT v FROM meta WHERE k = ?",
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("registry: meta %s: %w", key, err)
	}
	return value, nil
}
