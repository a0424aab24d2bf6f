package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefiles/filestore-bot/internal/service/code"
	"github.com/telefiles/filestore-bot/internal/service/registry"
	"github.com/telefiles/filestore-bot/internal/service/session"
)

const (
	forwardRetries    = 3
	forwardRetryDelay = 600 * time.Millisecond

	// codeRetries попытки при (маловероятной) коллизии случайного кода
	codeRetries = 5
)

// handleStorable обрабатывает сообщение без команды в зависимости от
// режима пользователя: сохранение одного файла, накопление batch,
// иначе игнорируется.
func (b *Bot) handleStorable(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	// Режим одного файла снимается до пересылки: даже неудачная
	// попытка расходует ровно одно сообщение.
	if b.sessions.ConsumeFileStore(userID) {
		b.storeSingle(ctx, msg)
		return
	}

	if b.sessions.Mode(userID) == session.ModeBatch {
		b.appendToBatch(msg)
		return
	}
}

// storeSingle пересылает сообщение в vault-чат и регистрирует его под
// новым кодом.
func (b *Bot) storeSingle(ctx context.Context, msg *tgbotapi.Message) {
	vaultMsgID, err := b.forwardToVault(msg)
	if err != nil {
		b.logger.Error("failed to store message", "error", err)
		b.sendMessage(msg.Chat.ID, MessageStoreFailed)
		return
	}

	codeValue, err := b.newCode(ctx)
	if err != nil {
		b.logger.Error("failed to generate code", "error", err)
		b.sendMessage(msg.Chat.ID, MessageUnexpectedError)
		return
	}

	file := registry.File{
		Code:      codeValue,
		MsgID:     vaultMsgID,
		Owner:     msg.From.ID,
		CreatedAt: time.Now(),
		Caption:   messageCaption(msg),
		FileType:  detectFileType(msg),
	}
	if err := b.registry.SaveFile(ctx, file); err != nil {
		b.logger.Error("failed to register file", "error", err)
		b.sendMessage(msg.Chat.ID, MessageUnexpectedError)
		return
	}

	b.mirrorDocument(ctx, codeValue, msg)

	b.logger.Info("file stored", "owner", msg.From.ID, "file_type", file.FileType)
	b.sendMessage(msg.Chat.ID, fmt.Sprintf(MessageStored, b.deepLink(codeValue)))
}

// appendToBatch молча пересылает сообщение в vault-чат и добавляет его
// в накапливаемый batch. Неудачная пересылка пропускает сообщение,
// сохраняя порядок остальных.
func (b *Bot) appendToBatch(msg *tgbotapi.Message) {
	vaultMsgID, err := b.forwardToVault(msg)
	if err != nil {
		b.logger.Warn("batch item dropped", "error", err)
		return
	}
	b.sessions.AppendBatchItem(msg.From.ID, vaultMsgID)
}

// newCode генерирует код, не занятый в реестре
func (b *Bot) newCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		codeValue, err := code.Generate()
		if err != nil {
			return "", err
		}
		used, err := b.registry.CodeInUse(ctx, codeValue)
		if err != nil {
			return "", err
		}
		if !used {
			return codeValue, nil
		}
	}
	return "", errors.New("could not find a free code")
}

// forwardToVault пересылает входящее сообщение в vault-чат (и, если
// настроено, в резервный чат) с повторными попытками. Возвращает
// message_id копии в vault-чате.
func (b *Bot) forwardToVault(msg *tgbotapi.Message) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= forwardRetries; attempt++ {
		fwd, err := b.api.Send(tgbotapi.NewForward(b.vaultChatID, msg.Chat.ID, msg.MessageID))
		if err == nil {
			b.forwardToBackup(msg)
			return fwd.MessageID, nil
		}
		lastErr = err
		b.logger.Warn("forward attempt failed", "attempt", attempt, "error", err)
		time.Sleep(forwardRetryDelay)
	}
	return 0, fmt.Errorf("forward to vault failed after %d attempts: %w", forwardRetries, lastErr)
}

// forwardToBackup отправляет вторую копию в резервный чат, best effort
func (b *Bot) forwardToBackup(msg *tgbotapi.Message) {
	if b.backupChatID == 0 {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewForward(b.backupChatID, msg.Chat.ID, msg.MessageID)); err != nil {
		b.logger.Warn("backup forward failed", "error", err)
	}
}

// forwardFromVault пересылает сохранённое сообщение из vault-чата
// пользователю.
func (b *Bot) forwardFromVault(chatID int64, vaultMsgID int) error {
	if _, err := b.api.Send(tgbotapi.NewForward(chatID, b.vaultChatID, vaultMsgID)); err != nil {
		return fmt.Errorf("forward from vault: %w", err)
	}
	return nil
}

// mirrorDocument сохраняет локальную копию документа, если зеркало
// включено. Ошибки не фатальны: запись в реестре уже есть.
func (b *Bot) mirrorDocument(ctx context.Context, codeValue string, msg *tgbotapi.Message) {
	if b.archive == nil || msg.Document == nil {
		return
	}

	fileURL, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		b.logger.Warn("failed to get file URL for mirror", "error", err)
		return
	}

	path, err := b.archive.Mirror(ctx, codeValue, msg.Document.FileName, fileURL)
	if err != nil {
		b.logger.Warn("failed to mirror document", "error", err)
		return
	}

	if err := b.registry.SetArchivePath(ctx, codeValue, path); err != nil {
		b.logger.Warn("failed to record archive path", "error", err)
	}
}

// messageCaption возвращает подпись к медиа либо текст сообщения
func messageCaption(msg *tgbotapi.Message) string {
	if msg.Caption != "" {
		return msg.Caption
	}
	return msg.Text
}

// detectFileType определяет тип содержимого сообщения
func detectFileType(msg *tgbotapi.Message) string {
	switch {
	case msg.Document != nil:
		return "document"
	case len(msg.Photo) > 0:
		return "photo"
	case msg.Video != nil:
		return "video"
	case msg.Audio != nil:
		return "audio"
	case msg.Voice != nil:
		return "voice"
	case msg.Sticker != nil:
		return "sticker"
	case msg.Animation != nil:
		return "animation"
	default:
		return "text"
	}
}
