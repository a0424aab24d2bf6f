// Package registry хранит постоянное состояние бота в SQLite:
// сохранённые файлы, batch-наборы, список админов и служебные настройки.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/telefiles/filestore-bot/pkg/logger"
)

var (
	// ErrNotFound код не зарегистрирован (или запись уже удалена)
	ErrNotFound = errors.New("registry: not found")
	// ErrCodeTaken код уже занят файлом или batch-набором
	ErrCodeTaken = errors.New("registry: code already in use")
)

// File описывает одно сохранённое сообщение
type File struct {
	Code        string
	MsgID       int // message_id сообщения в vault-чате
	Owner       int64
	CreatedAt   time.Time
	Caption     string
	FileType    string
	ArchivePath string // путь локальной копии, пустой если зеркалирование выключено
}

// Batch описывает набор сообщений под одним кодом
type Batch struct {
	Code      string
	Owner     int64
	CreatedAt time.Time
	ItemCount int
}

// Stats агрегированные счётчики для /stats
type Stats struct {
	Files   int64
	Batches int64
	Items   int64
	Admins  int64
}

// Config параметры открытия реестра
type Config struct {
	// Path путь к файлу базы. Файл создаётся при первом открытии.
	Path string
	// PoolSize размер пула соединений, по умолчанию 4
	PoolSize int
	// Logger получает операционные сообщения, по умолчанию уровень info
	Logger *logger.Logger
}

// Registry обёртка над пулом SQLite-соединений. Безопасен для
// конкурентного использования: каждая операция берёт соединение из пула
// и возвращает его по завершении.
type Registry struct {
	pool   *sqlitex.Pool
	logger *logger.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	code         TEXT PRIMARY KEY,
	msg_id       INTEGER NOT NULL,
	owner        INTEGER NOT NULL,
	created_at   INTEGER NOT NULL,
	caption      TEXT NOT NULL DEFAULT '',
	file_type    TEXT NOT NULL DEFAULT 'text',
	archive_path TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_files_owner ON files(owner, created_at DESC);

CREATE TABLE IF NOT EXISTS batches (
	code       TEXT PRIMARY KEY,
	owner      INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	item_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
	code     TEXT NOT NULL,
	position INTEGER NOT NULL,
	msg_id   INTEGER NOT NULL,
	PRIMARY KEY (code, position)
);

CREATE TABLE IF NOT EXISTS admins (
	id INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS meta (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL
);
`

// Open открывает (и при необходимости создаёт) базу реестра.
// Вызывающий обязан вызвать Close.
func Open(cfg Config) (*Registry, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("registry: Path is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: opening %s: %w", cfg.Path, err)
	}

	log.Info("registry opened", "db_path", cfg.Path, "pool_size", poolSize)

	return &Registry{pool: pool, logger: log}, nil
}

// Close закрывает пул соединений. Блокируется, пока все взятые
// соединения не будут возвращены.
func (r *Registry) Close() error {
	if err := r.pool.Close(); err != nil {
		return fmt.Errorf("registry: close: %w", err)
	}
	return nil
}

// prepareConn применяется к каждому соединению пула: прагмы и схема.
func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("registry: %s: %w", pragma, err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("registry: applying schema: %w", err)
	}
	return nil
}

func (r *Registry) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: take connection: %w", err)
	}
	return conn, nil
}

// codeInUse проверяет занятость кода на уже взятом соединении.
// Используется внутри транзакций SaveFile/Rename/CreateBatch.
func codeInUse(conn *sqlite.Conn, code string) (bool, error) {
	var used bool
	err := sqlitex.Execute(conn,
		"SELECT 1 FROM files WHERE code = ? UNION SELECT 1 FROM batches WHERE code = ? LIMIT 1",
		&sqlitex.ExecOptions{
			Args: []any{code, code},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				used = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("registry: checking code: %w", err)
	}
	return used, nil
}

// CodeInUse сообщает, занят ли код файлом или batch-набором.
func (r *Registry) CodeInUse(ctx context.Context, codeValue string) (bool, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return false, err
	}
	defer r.pool.Put(conn)

	return codeInUse(conn, codeValue)
}

// Stats возвращает счётчики файлов, batch-наборов, их элементов и админов.
func (r *Registry) Stats(ctx context.Context) (Stats, error) {
	conn, err := r.take(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer r.pool.Put(conn)

	var stats Stats
	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM files", &stats.Files},
		{"SELECT COUNT(*) FROM batches", &stats.Batches},
		{"SELECT COUNT(*) FROM batch_items", &stats.Items},
		{"SELECT COUNT(*) FROM admins", &stats.Admins},
	}
	for _, c := range counts {
		dst := c.dst
		err := sqlitex.Execute(conn, c.query, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				*dst = stmt.ColumnInt64(0)
				return nil
			},
		})
		if err != nil {
			return Stats{}, fmt.Errorf("registry: stats: %w", err)
		}
	}
	return stats, nil
}
