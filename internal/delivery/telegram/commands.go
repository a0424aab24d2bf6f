package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/telefiles/filestore-bot/internal/service/code"
	"github.com/telefiles/filestore-bot/internal/service/registry"
)

// Telegram не принимает сообщения длиннее 4096 символов, длинные списки
// режем с запасом.
const maxListMessageLen = 3500

// cmdStart обрабатывает /start и /start CODE
func (b *Bot) cmdStart(ctx context.Context, chatID int64, args []string) {
	if len(args) > 0 {
		b.handleRestore(ctx, chatID, strings.TrimSpace(args[0]))
		return
	}
	b.sendMessage(chatID, MessageStart)
}

// cmdHelp обрабатывает /help
func (b *Bot) cmdHelp(chatID int64) {
	b.sendMessage(chatID, MessageHelp)
}

// cmdFileStore переводит пользователя в режим сохранения одного файла
func (b *Bot) cmdFileStore(userID, chatID int64) {
	b.sessions.ArmFileStore(userID)
	b.sendMessage(chatID, MessageFileStorePrompt)
}

// cmdMyFiles выводит файлы пользователя, новые первыми
func (b *Bot) cmdMyFiles(ctx context.Context, userID, chatID int64) {
	files, err := b.registry.FilesByOwner(ctx, userID)
	if err != nil {
		b.logger.Error("failed to list files", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}
	if len(files) == 0 {
		b.sendMessage(chatID, MessageNoStoredFiles)
		return
	}

	entries := make([]string, 0, len(files))
	for _, f := range files {
		entries = append(entries, fmt.Sprintf("%s - %s\n%s",
			f.Code,
			f.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			b.deepLink(f.Code),
		))
	}

	for _, chunk := range joinChunks(entries, maxListMessageLen) {
		b.sendMessage(chatID, chunk)
	}
}

// cmdSetCode переименовывает последний сохранённый файл пользователя
func (b *Bot) cmdSetCode(ctx context.Context, userID, chatID int64, args []string) {
	if len(args) == 0 {
		b.sendMessage(chatID, MessageSetCodeUsage)
		return
	}

	newCode := strings.TrimSpace(args[0])
	if !code.Valid(newCode) {
		b.sendMessage(chatID, MessageCodeInvalid)
		return
	}

	_, err := b.registry.Rename(ctx, userID, newCode)
	switch {
	case errors.Is(err, registry.ErrCodeTaken):
		b.sendMessage(chatID, MessageCodeTaken)
	case errors.Is(err, registry.ErrNotFound):
		b.sendMessage(chatID, MessageNoRecentFile)
	case err != nil:
		b.logger.Error("failed to rename code", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
	default:
		b.sendMessage(chatID, fmt.Sprintf(MessageCodeUpdated, b.deepLink(newCode)))
	}
}

// joinChunks склеивает записи через пустую строку, начиная новое
// сообщение при достижении лимита длины.
func joinChunks(entries []string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	for _, entry := range entries {
		if current.Len() > 0 && current.Len()+len(entry)+2 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(entry)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
