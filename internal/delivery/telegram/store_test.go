package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		name string
		msg  *tgbotapi.Message
		want string
	}{
		{"document", &tgbotapi.Message{Document: &tgbotapi.Document{}}, "document"},
		{"photo", &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{}}}, "photo"},
		{"video", &tgbotapi.Message{Video: &tgbotapi.Video{}}, "video"},
		{"audio", &tgbotapi.Message{Audio: &tgbotapi.Audio{}}, "audio"},
		{"voice", &tgbotapi.Message{Voice: &tgbotapi.Voice{}}, "voice"},
		{"sticker", &tgbotapi.Message{Sticker: &tgbotapi.Sticker{}}, "sticker"},
		{"animation", &tgbotapi.Message{Animation: &tgbotapi.Animation{}}, "animation"},
		{"text", &tgbotapi.Message{Text: "hello"}, "text"},
		// Документ с подписью остаётся документом.
		{"document with photo thumb", &tgbotapi.Message{
			Document: &tgbotapi.Document{},
			Caption:  "caption",
		}, "document"},
	}

	for _, tc := range cases {
		if got := detectFileType(tc.msg); got != tc.want {
			t.Errorf("%s: detectFileType = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMessageCaption(t *testing.T) {
	if got := messageCaption(&tgbotapi.Message{Caption: "cap", Text: "txt"}); got != "cap" {
		t.Errorf("caption takes precedence, got %q", got)
	}
	if got := messageCaption(&tgbotapi.Message{Text: "txt"}); got != "txt" {
		t.Errorf("text fallback, got %q", got)
	}
	if got := messageCaption(&tgbotapi.Message{}); got != "" {
		t.Errorf("empty message, got %q", got)
	}
}

func TestDeepLink(t *testing.T) {
	b := &Bot{username: "MyFilestoreBot"}
	want := "https://t.me/MyFilestoreBot?start=AB12CD34"
	if got := b.deepLink("AB12CD34"); got != want {
		t.Errorf("deepLink = %q, want %q", got, want)
	}
}

func TestJoinChunks(t *testing.T) {
	entries := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}

	chunks := joinChunks(entries, 100)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if len(chunk) > 100 {
			t.Fatalf("chunk exceeds limit: %d", len(chunk))
		}
	}
	if !strings.HasPrefix(chunks[0], "aaa") || !strings.Contains(chunks[0], "bbb") {
		t.Fatalf("first chunk lost entries: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "ccc") {
		t.Fatalf("second chunk lost entries: %q", chunks[1])
	}

	if got := joinChunks(nil, 100); len(got) != 0 {
		t.Fatalf("expected no chunks for empty input, got %v", got)
	}

	// Одна запись длиннее лимита всё равно отправляется целиком.
	long := []string{strings.Repeat("x", 150)}
	if got := joinChunks(long, 100); len(got) != 1 || got[0] != long[0] {
		t.Fatalf("oversized single entry mishandled: %v", got)
	}
}
