package registry

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SweepResult перечисляет записи, удалённые одним проходом очистки.
// Files нужны вызывающему, чтобы убрать локальные архивные копии.
type SweepResult struct {
	Files   []File
	Batches []string
}

// Sweep удаляет файлы и batch-наборы, созданные раньше cutoff.
// Элементы batch-наборов удаляются вместе с набором. Сообщения в
// vault-чате не трогаются, удаляются только записи реестра.
func (r *Registry) Sweep(ctx context.Context, cutoff time.Time) (result SweepResult, err error) {
	conn, err := r.take(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	defer r.pool.Put(conn)

	endTx, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: begin: %w", err)
	}
	defer endTx(&err)

	cutoffUnix := cutoff.Unix()

	err = sqlitex.Execute(conn,
		`SELECT code, msg_id, owner, created_at, caption, file_type, archive_path
		 FROM files WHERE created_at < ?`,
		&sqlitex.ExecOptions{
			Args: []any{cutoffUnix},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result.Files = append(result.Files, scanFile(stmt))
				return nil
			},
		})
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: expired files: %w", err)
	}

	err = sqlitex.Execute(conn,
		"SELECT code FROM batches WHERE created_at < ?",
		&sqlitex.ExecOptions{
			Args: []any{cutoffUnix},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result.Batches = append(result.Batches, stmt.ColumnText(0))
				return nil
			},
		})
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: expired batches: %w", err)
	}

	if len(result.Files) == 0 && len(result.Batches) == 0 {
		return SweepResult{}, nil
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM files WHERE created_at < ?",
		&sqlitex.ExecOptions{Args: []any{cutoffUnix}})
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: delete files: %w", err)
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM batch_items WHERE code IN (SELECT code FROM batches WHERE created_at < ?)",
		&sqlitex.ExecOptions{Args: []any{cutoffUnix}})
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: delete batch items: %w", err)
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM batches WHERE created_at < ?",
		&sqlitex.ExecOptions{Args: []any{cutoffUnix}})
	if err != nil {
		return SweepResult{}, fmt.Errorf("registry: sweep: delete batches: %w", err)
	}

	r.logger.Info("sweep removed expired entries",
		"files", len(result.Files),
		"batches", len(result.Batches),
	)
	return result, nil
}
