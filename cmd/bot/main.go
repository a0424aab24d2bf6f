package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/telefiles/filestore-bot/internal/delivery/telegram"
)

func main() {
	// Получаем конфигурацию из переменных окружения
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("BOT_TOKEN environment variable not set")
	}

	vaultChatID := envInt64("VAULT_CHAT_ID", 0)
	if vaultChatID == 0 {
		log.Fatal("VAULT_CHAT_ID environment variable not set")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "filestore.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := telegram.Config{
		Token:             token,
		Username:          os.Getenv("BOT_USERNAME"),
		VaultChatID:       vaultChatID,
		BackupChatID:      envInt64("BACKUP_CHAT_ID", 0),
		OwnerID:           envInt64("OWNER_ID", 0),
		DBPath:            dbPath,
		ArchiveDir:        os.Getenv("ARCHIVE_DIR"),
		AutoDelete:        time.Duration(envInt64("AUTO_DELETE_SECONDS", 0)) * time.Second,
		RestoreDelayMs:    int(envInt64("RESTORE_DELAY_MS", 1500)),
		SessionTimeoutMin: int(envInt64("SESSION_TIMEOUT_MINUTES", 60)),
		LogLevel:          logLevel,
	}

	bot, err := telegram.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	defer func() {
		if err := bot.Close(); err != nil {
			log.Printf("Failed to close bot: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
}

func envInt64(name string, fallback int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid %s value %q: %v", name, raw, err)
	}
	return v
}
