package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/telefiles/filestore-bot/internal/service/registry"
)

// requireAdmin проверяет права и отвечает отказом обычным пользователям
func (b *Bot) requireAdmin(ctx context.Context, userID, chatID int64) bool {
	admin, err := b.registry.IsAdmin(ctx, userID)
	if err != nil {
		b.logger.Error("failed to check admin", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return false
	}
	if !admin {
		b.sendMessage(chatID, MessageAdminsOnly)
		return false
	}
	return true
}

// cmdBatch включает молчаливый режим накопления batch.
// Подтверждение не отправляется: пересылаемые сообщения не должны
// перемежаться ответами бота.
func (b *Bot) cmdBatch(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}
	b.sessions.StartBatch(userID)
}

// cmdBatchDone завершает batch и выдаёт единую ссылку
func (b *Bot) cmdBatchDone(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}

	items, ok := b.sessions.FinishBatch(userID)
	if !ok {
		b.sendMessage(chatID, MessageNoActiveBatch)
		return
	}
	if len(items) == 0 {
		b.sendMessage(chatID, MessageBatchEmpty)
		return
	}

	codeValue, err := b.newCode(ctx)
	if err != nil {
		b.logger.Error("failed to generate batch code", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	err = b.registry.CreateBatch(ctx, registry.Batch{
		Code:      codeValue,
		Owner:     userID,
		CreatedAt: time.Now(),
	}, items)
	if err != nil {
		b.logger.Error("failed to save batch", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	b.logger.Info("batch saved", "owner", userID, "items", len(items))
	b.sendMessage(chatID, fmt.Sprintf(MessageBatchSaved, b.deepLink(codeValue)))
}

// cmdStats выводит счётчики реестра
func (b *Bot) cmdStats(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}

	stats, err := b.registry.Stats(ctx)
	if err != nil {
		b.logger.Error("failed to read stats", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(MessageStats,
		stats.Files, stats.Batches, stats.Items, stats.Admins))
}

// cmdAdminList выводит список админов
func (b *Bot) cmdAdminList(ctx context.Context, userID, chatID int64) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}

	ids, err := b.registry.Admins(ctx)
	if err != nil {
		b.logger.Error("failed to list admins", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, strconv.FormatInt(id, 10))
	}
	b.sendMessage(chatID, fmt.Sprintf(MessageAdminList, strings.Join(lines, "\n")))
}

// cmdAutoDelete настраивает очистку просроченных записей
func (b *Bot) cmdAutoDelete(ctx context.Context, userID, chatID int64, args []string) {
	if !b.requireAdmin(ctx, userID, chatID) {
		return
	}
	if len(args) == 0 {
		b.sendMessage(chatID, MessageAutoDeleteUsage)
		return
	}

	if strings.EqualFold(args[0], "off") {
		if err := b.registry.SetAutoDelete(ctx, false, 0); err != nil {
			b.logger.Error("failed to disable auto-delete", "error", err)
			b.sendMessage(chatID, MessageUnexpectedError)
			return
		}
		b.sendMessage(chatID, MessageAutoDeleteDisabled)
		return
	}

	seconds, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || seconds <= 0 {
		b.sendMessage(chatID, MessageAutoDeleteUsage)
		return
	}

	if err := b.registry.SetAutoDelete(ctx, true, time.Duration(seconds)*time.Second); err != nil {
		b.logger.Error("failed to enable auto-delete", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(MessageAutoDeleteEnabled, seconds))
}

// cmdAddAdmin добавляет админа. Доступна только владельцу, для остальных
// команда молча игнорируется.
func (b *Bot) cmdAddAdmin(ctx context.Context, userID, chatID int64, args []string) {
	if userID != b.ownerID {
		return
	}
	if len(args) == 0 {
		b.sendMessage(chatID, MessageAddAdminUsage)
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, MessageAddAdminUsage)
		return
	}

	if err := b.registry.AddAdmin(ctx, id); err != nil {
		b.logger.Error("failed to add admin", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(MessageAdminAdded, id))
}

// cmdRemoveAdmin убирает админа. Доступна только владельцу.
func (b *Bot) cmdRemoveAdmin(ctx context.Context, userID, chatID int64, args []string) {
	if userID != b.ownerID {
		return
	}
	if len(args) == 0 {
		b.sendMessage(chatID, MessageRemoveAdminUsage)
		return
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, MessageRemoveAdminUsage)
		return
	}

	if err := b.registry.RemoveAdmin(ctx, id); err != nil {
		b.logger.Error("failed to remove admin", "error", err)
		b.sendMessage(chatID, MessageUnexpectedError)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(MessageAdminRemoved, id))
}
