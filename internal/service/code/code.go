package code

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Length длина генерируемого кода
const Length = 8

// alphabet символы генерируемых кодов: заглавные буквы и цифры
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// validRe допустимый payload для deep link (ограничение Telegram:
// A-Z, a-z, 0-9, подчёркивание и дефис, не длиннее 64 символов)
var validRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// Generate возвращает новый случайный код из Length символов.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Valid проверяет, что пользовательский код пригоден для deep link.
func Valid(s string) bool {
	return validRe.MatchString(s)
}
