package registry

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SaveFile регистрирует сохранённое сообщение под новым кодом.
// Возвращает ErrCodeTaken, если код уже занят.
func (r *Registry) SaveFile(ctx context.Context, f File) (err error) {
	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	endTx, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("registry: save file: begin: %w", err)
	}
	defer endTx(&err)

	used, err := codeInUse(conn, f.Code)
	if err != nil {
		return err
	}
	if used {
		return ErrCodeTaken
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO files (code, msg_id, owner, created_at, caption, file_type, archive_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				f.Code,
				f.MsgID,
				f.Owner,
				f.CreatedAt.Unix(),
				f.Caption,
				f.FileType,
				f.ArchivePath,
			},
		})
	if err != nil {
		return fmt.Errorf("registry: save file: %w", err)
	}
	return nil
}

// FileByCode возвращает файл по коду или ErrNotFound.
func (r *Registry) FileByCode(ctx context.Context, codeValue string) (File, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return File{}, err
	}
	defer r.pool.Put(conn)

	var (
		file  File
		found bool
	)
	err = sqlitex.Execute(conn,
		`SELECT code, msg_id, owner, created_at, caption, file_type, archive_path
		 FROM files WHERE code = ?`,
		&sqlitex.ExecOptions{
			Args: []any{codeValue},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				file = scanFile(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return File{}, fmt.Errorf("registry: file by code: %w", err)
	}
	if !found {
		return File{}, ErrNotFound
	}
	return file, nil
}

// FilesByOwner возвращает файлы пользователя, новые первыми.
func (r *Registry) FilesByOwner(ctx context.Context, owner int64) ([]File, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(conn)

	var files []File
	err = sqlitex.Execute(conn,
		`SELECT code, msg_id, owner, created_at, caption, file_type, archive_path
		 FROM files WHERE owner = ? ORDER BY created_at DESC, code`,
		&sqlitex.ExecOptions{
			Args: []any{owner},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				files = append(files, scanFile(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("registry: files by owner: %w", err)
	}
	return files, nil
}

// Rename присваивает последнему сохранённому файлу пользователя новый код.
// Возвращает старый код. ErrCodeTaken, если новый код занят;
// ErrNotFound, если у пользователя нет файлов.
func (r *Registry) Rename(ctx context.Context, owner int64, newCode string) (old string, err error) {
	conn, err := r.take(ctx)
	if err != nil {
		return "", err
	}
	defer r.pool.Put(conn)

	endTx, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return "", fmt.Errorf("registry: rename: begin: %w", err)
	}
	defer endTx(&err)

	used, err := codeInUse(conn, newCode)
	if err != nil {
		return "", err
	}
	if used {
		return "", ErrCodeTaken
	}

	err = sqlitex.Execute(conn,
		"SELECT code FROM files WHERE owner = ? ORDER BY created_at DESC, code LIMIT 1",
		&sqlitex.ExecOptions{
			Args: []any{owner},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				old = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("registry: rename: latest file: %w", err)
	}
	if old == "" {
		return "", ErrNotFound
	}

	err = sqlitex.Execute(conn,
		"UPDATE files SET code = ? WHERE code = ?",
		&sqlitex.ExecOptions{Args: []any{newCode, old}})
	if err != nil {
		return "", fmt.Errorf("registry: rename: update: %w", err)
	}
	return old, nil
}

// SetArchivePath записывает путь локальной копии файла.
func (r *Registry) SetArchivePath(ctx context.Context, codeValue, path string) error {
	conn, err := r.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn,
		"UPDATE files SET archive_path = ? WHERE code = ?",
		&sqlitex.ExecOptions{Args: []any{path, codeValue}})
	if err != nil {
		return fmt.Errorf("registry: set archive path: %w", err)
	}
	return nil
}

func scanFile(stmt *sqlite.Stmt) File {
	return File{
		Code:        stmt.ColumnText(0),
		MsgID:       stmt.ColumnInt(1),
		Owner:       stmt.ColumnInt64(2),
		CreatedAt:   time.Unix(stmt.ColumnInt64(3), 0).UTC(),
		Caption:     stmt.ColumnText(4),
		FileType:    stmt.ColumnText(5),
		ArchivePath: stmt.ColumnText(6),
	}
}
