package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/telefiles/filestore-bot/internal/service/archive"
	"github.com/telefiles/filestore-bot/internal/service/registry"
	"github.com/telefiles/filestore-bot/internal/service/session"
	"github.com/telefiles/filestore-bot/pkg/logger"
)

const (
	sweepInterval = 30 * time.Second
	idlePoll      = 10 * time.Second
)

// Bot управляет Telegram ботом
type Bot struct {
	api      *tgbotapi.BotAPI
	registry *registry.Registry
	sessions *session.Manager
	archive  *archive.Archive // nil, если зеркалирование выключено
	logger   *logger.Logger

	username     string
	vaultChatID  int64
	backupChatID int64
	ownerID      int64
	autoDelete   time.Duration
	restoreDelay time.Duration
}

// Config конфигурация для бота
type Config struct {
	Token             string
	Username          string // имя бота без @, используется в deep link
	VaultChatID       int64  // чат, в который пересылаются сохраняемые сообщения
	BackupChatID      int64  // опциональная вторая копия каждого сообщения
	OwnerID           int64
	DBPath            string
	ArchiveDir        string // пустая строка выключает локальное зеркало
	AutoDelete        time.Duration
	RestoreDelayMs    int
	SessionTimeoutMin int
	LogLevel          string
}

// New создаёт новый бот
func New(cfg Config) (*Bot, error) {
	if cfg.VaultChatID == 0 {
		return nil, fmt.Errorf("vault chat id is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	reg, err := registry.Open(registry.Config{
		Path:   cfg.DBPath,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	var arc *archive.Archive
	if cfg.ArchiveDir != "" {
		arc, err = archive.New(cfg.ArchiveDir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive: %w", err)
		}
	}

	sessions := session.NewManager(time.Duration(cfg.SessionTimeoutMin) * time.Minute)

	username := cfg.Username
	if username == "" {
		username = api.Self.UserName
	}

	restoreDelay := time.Duration(cfg.RestoreDelayMs) * time.Millisecond
	if restoreDelay <= 0 {
		restoreDelay = 1500 * time.Millisecond
	}

	bot := &Bot{
		api:          api,
		registry:     reg,
		sessions:     sessions,
		archive:      arc,
		logger:       log,
		username:     username,
		vaultChatID:  cfg.VaultChatID,
		backupChatID: cfg.BackupChatID,
		ownerID:      cfg.OwnerID,
		autoDelete:   cfg.AutoDelete,
		restoreDelay: restoreDelay,
	}

	log.Info("bot initialized", "botname", api.Self.UserName)
	return bot, nil
}

// Start запускает бота и обрабатывает обновления до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	if b.ownerID != 0 {
		if err := b.registry.AddAdmin(ctx, b.ownerID); err != nil {
			return fmt.Errorf("failed to register owner as admin: %w", err)
		}
	}
	if err := b.registry.SeedAutoDelete(ctx, b.autoDelete); err != nil {
		return fmt.Errorf("failed to seed auto-delete settings: %w", err)
	}

	b.publishCommands()
	go b.autoDeleteLoop(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Обрабатываем обновление в отдельной горутине
			go b.handleUpdate(ctx, update)
		}
	}
}

// Close освобождает ресурсы бота
func (b *Bot) Close() error {
	return b.registry.Close()
}

// handleUpdate обрабатывает одно обновление от Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("recovered from panic", "error", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	b.logger.Debug("received message", "user_id", msg.From.ID, "chat_id", msg.Chat.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Сообщение без команды: либо сохранение одного файла,
	// либо накопление batch, либо игнорируется.
	b.handleStorable(ctx, msg)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.cmdStart(ctx, chatID, args)
	case "help":
		b.cmdHelp(chatID)
	case "filestore":
		b.cmdFileStore(userID, chatID)
	case "myfiles":
		b.cmdMyFiles(ctx, userID, chatID)
	case "setcode":
		b.cmdSetCode(ctx, userID, chatID, args)
	case "batch":
		b.cmdBatch(ctx, userID, chatID)
	case "batchdone":
		b.cmdBatchDone(ctx, userID, chatID)
	case "stats":
		b.cmdStats(ctx, userID, chatID)
	case "adminlist":
		b.cmdAdminList(ctx, userID, chatID)
	case "autodelete":
		b.cmdAutoDelete(ctx, userID, chatID, args)
	case "addadmin":
		b.cmdAddAdmin(ctx, userID, chatID, args)
	case "removeadmin":
		b.cmdRemoveAdmin(ctx, userID, chatID, args)
	default:
		b.sendMessage(chatID, MessageUnknownCommand)
	}
}

// autoDeleteLoop периодически удаляет просроченные записи реестра.
// Настройки читаются на каждой итерации, чтобы /autodelete действовал
// без перезапуска.
func (b *Bot) autoDeleteLoop(ctx context.Context) {
	for {
		delay := idlePoll

		enabled, age, err := b.registry.AutoDelete(ctx)
		switch {
		case err != nil:
			b.logger.Error("failed to read auto-delete settings", "error", err)
		case enabled && age > 0:
			b.runSweep(ctx, age)
			delay = sweepInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (b *Bot) runSweep(ctx context.Context, age time.Duration) {
	result, err := b.registry.Sweep(ctx, time.Now().Add(-age))
	if err != nil {
		b.logger.Error("sweep failed", "error", err)
		return
	}

	if b.archive != nil && len(result.Files) > 0 {
		paths := make([]string, 0, len(result.Files))
		for _, f := range result.Files {
			paths = append(paths, f.ArchivePath)
		}
		b.archive.Remove(paths)
	}
}

// publishCommands регистрирует меню команд бота
func (b *Bot) publishCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot / restore a file"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help"},
		tgbotapi.BotCommand{Command: "filestore", Description: "Store the next file you send"},
		tgbotapi.BotCommand{Command: "myfiles", Description: "List your stored files"},
		tgbotapi.BotCommand{Command: "setcode", Description: "Rename last stored file"},
		tgbotapi.BotCommand{Command: "batch", Description: "Start silent batch mode (admin)"},
		tgbotapi.BotCommand{Command: "batchdone", Description: "Finish batch and generate one link"},
		tgbotapi.BotCommand{Command: "stats", Description: "Show bot stats (admin)"},
		tgbotapi.BotCommand{Command: "adminlist", Description: "List admins (admin)"},
		tgbotapi.BotCommand{Command: "autodelete", Description: "Configure auto-delete (admin)"},
		tgbotapi.BotCommand{Command: "addadmin", Description: "Add an admin (owner only)"},
		tgbotapi.BotCommand{Command: "removeadmin", Description: "Remove an admin (owner only)"},
	)

	if _, err := b.api.Request(commands); err != nil {
		b.logger.Warn("could not set bot commands", "error", err)
	}
}

// deepLink возвращает ссылку восстановления для кода
func (b *Bot) deepLink(codeValue string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", b.username, codeValue)
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "error", err)
	}
}
