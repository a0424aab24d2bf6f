// Package archive ведёт локальное зеркало сохранённых документов.
// Основное хранилище vault-чат в Telegram; зеркало даёт копию на диске
// на случай, если сообщение в чате удалят вручную.
package archive

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/inqast/fstorage/storage"

	"github.com/telefiles/filestore-bot/pkg/logger"
)

// Archive скачивает документы по URL Bot API и складывает их на диск
// под кодом файла.
type Archive struct {
	store  storage.TempStorage
	client *http.Client
	logger *logger.Logger
}

// New создаёт архив в каталоге dir.
func New(dir string, log *logger.Logger) (*Archive, error) {
	store, err := storage.NewFileSystemStorage(dir)
	if err != nil {
		return nil, fmt.Errorf("archive: creating storage: %w", err)
	}

	return &Archive{
		store:  store,
		client: &http.Client{Timeout: 2 * time.Minute},
		logger: log,
	}, nil
}

// Mirror скачивает файл по fileURL и сохраняет копию под кодом.
// Расширение берётся из исходного имени файла. Возвращает путь копии.
func (a *Archive) Mirror(ctx context.Context, codeValue, filename, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("archive: building request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("archive: downloading: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			a.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive: downloading: unexpected status %s", resp.Status)
	}

	path, err := a.store.Save(codeValue+filepath.Ext(filename), resp.Body)
	if err != nil {
		return "", fmt.Errorf("archive: saving copy: %w", err)
	}

	a.logger.Debug("document mirrored", "code", codeValue, "path", path)
	return path, nil
}

// Remove удаляет локальные копии по списку путей. Пустые пути
// (записи без зеркала) пропускаются.
func (a *Archive) Remove(paths []string) {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return
	}
	a.store.DeleteAll(existing)
}
