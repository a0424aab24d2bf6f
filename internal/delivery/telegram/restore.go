package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telefiles/filestore-bot/internal/service/registry"
)

// handleRestore обрабатывает deep link /start CODE: сначала ищет
// одиночный файл, затем batch-набор.
func (b *Bot) handleRestore(ctx context.Context, chatID int64, codeValue string) {
	file, err := b.registry.FileByCode(ctx, codeValue)
	if err == nil {
		if err := b.forwardFromVault(chatID, file.MsgID); err != nil {
			b.logger.Error("failed to restore file", "error", err)
			b.sendMessage(chatID, MessageRestoreFailed)
		}
		return
	}
	if !errors.Is(err, registry.ErrNotFound) {
		b.logger.Error("failed to look up code", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	items, err := b.registry.BatchItems(ctx, codeValue)
	if errors.Is(err, registry.ErrNotFound) {
		b.sendMessage(chatID, MessageUnknownLink)
		return
	}
	if err != nil {
		b.logger.Error("failed to look up batch", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	b.sendBatch(ctx, chatID, items)
}

// sendBatch пересылает элементы batch-набора в сохранённом порядке.
// Пауза между отправками спасает от rate limit Telegram и сохраняет
// порядок доставки.
func (b *Bot) sendBatch(ctx context.Context, chatID int64, items []int) {
	b.sendMessage(chatID, fmt.Sprintf(MessageSendingBatch, len(items)))

	for i, vaultMsgID := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.restoreDelay):
			}
		}
		if err := b.forwardFromVault(chatID, vaultMsgID); err != nil {
			b.logger.Error("failed to restore batch item", "position", i, "error", err)
		}
	}
}
