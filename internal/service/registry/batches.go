package registry

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// CreateBatch сохраняет batch-набор и его элементы одной транзакцией.
// Порядок msgIDs и есть порядок восстановления.
func (r *Registry) CreateBatch(ctx context.Context, b Batch, msgIDs []int) (err error) {
	if len(msgIDs) == 0 {
		return fmt.Errorf("registry: create batch: no items")
	}

	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	endTx, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("registry: create batch: begin: %w", err)
	}
	defer endTx(&err)

	used, err := codeInUse(conn, b.Code)
	if err != nil {
		return err
	}
	if used {
		return ErrCodeTaken
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO batches (code, owner, created_at, item_count) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{b.Code, b.Owner, b.CreatedAt.Unix(), len(msgIDs)},
		})
	if err != nil {
		return fmt.Errorf("registry: create batch: %w", err)
	}

	for position, msgID := range msgIDs {
		err = sqlitex.Execute(conn,
			"INSERT INTO batch_items (code, position, msg_id) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{
				Args: []any{b.Code, position, msgID},
			})
		if err != nil {
			return fmt.Errorf("registry: create batch: item %d: %w", position, err)
		}
	}
	return nil
}

// BatchItems возвращает message_id элементов batch-набора в порядке
// сохранения, либо ErrNotFound.
func (r *Registry) BatchItems(ctx context.Context, codeValue string) ([]int, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var exists bool
	err = sqlitex.Execute(conn,
		"SELECT 1 FROM batches WHERE code = ?",
		&sqlitex.ExecOptions{
			Args: []any{codeValue},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				exists = true
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("registry: batch items: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	var items []int
	err = sqlitex.Execute(conn,
		"SELECT msg_id FROM batch_items WHERE code = ? ORDER BY position",
		&sqlitex.ExecOptions{
			Args: []any{codeValue},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				items = append(items, stmt.ColumnInt(0))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("registry: batch items: %w", err)
	}
	return items, nil
}
