package session

import (
	"sync"
	"time"
)

// Mode представляет режим обработки сообщений пользователя
type Mode string

const (
	// ModeIdle обычный режим: сообщения без команд игнорируются
	ModeIdle Mode = "idle"
	// ModeAwaitFile следующее сообщение будет сохранено как один файл
	ModeAwaitFile Mode = "await_file"
	// ModeBatch сообщения молча накапливаются до /batchdone
	ModeBatch Mode = "batch"
)

// Session хранит модальное состояние пользователя
type Session struct {
	UserID    int64
	Mode      Mode
	Items     []int // message_id сообщений в vault-чате, в порядке поступления
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Manager управляет сессиями пользователей in-memory
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	timeout  time.Duration
}

// NewManager создаёт новый Manager с timeout для очистки брошенных сессий
func NewManager(timeout time.Duration) *Manager {
	sm := &Manager{
		sessions: make(map[int64]*Session),
		timeout:  timeout,
	}

	// Запускаем горутину для очистки старых сессий
	go sm.cleanupExpired()

	return sm
}

// Mode возвращает текущий режим пользователя
func (sm *Manager) Mode(userID int64) Mode {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if s, exists := sm.sessions[userID]; exists {
		return s.Mode
	}
	return ModeIdle
}

// ArmFileStore переводит пользователя в режим сохранения одного файла.
// Активный batch при этом сбрасывается.
func (sm *Manager) ArmFileStore(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sessions[userID] = &Session{
		UserID:    userID,
		Mode:      ModeAwaitFile,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// ConsumeFileStore снимает режим сохранения одного файла и сообщает,
// был ли он активен. Режим снимается ровно один раз, даже если само
// сохранение потом не удалось.
func (sm *Manager) ConsumeFileStore(userID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, exists := sm.sessions[userID]
	if !exists || s.Mode != ModeAwaitFile {
		return false
	}
	delete(sm.sessions, userID)
	return true
}

// StartBatch переводит пользователя в режим накопления batch
func (sm *Manager) StartBatch(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sessions[userID] = &Session{
		UserID:    userID,
		Mode:      ModeBatch,
		Items:     make([]int, 0),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// AppendBatchItem добавляет сообщение в активный batch. Возвращает false,
// если batch не активен.
func (sm *Manager) AppendBatchItem(userID int64, msgID int) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, exists := sm.sessions[userID]
	if !exists || s.Mode != ModeBatch {
		return false
	}
	s.Items = append(s.Items, msgID)
	s.UpdatedAt = time.Now()
	return true
}

// FinishBatch завершает batch и возвращает накопленные сообщения в порядке
// поступления. Второе значение false, если batch не был активен.
func (sm *Manager) FinishBatch(userID int64) ([]int, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, exists := sm.sessions[userID]
	if !exists || s.Mode != ModeBatch {
		return nil, false
	}
	delete(sm.sessions, userID)

	items := make([]int, len(s.Items))
	copy(items, s.Items)
	return items, true
}

// Clear очищает сессию пользователя
func (sm *Manager) Clear(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, userID)
}

// cleanupExpired запускается в отдельной горутине и очищает старые сессии
func (sm *Manager) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.mu.Lock()

		now := time.Now()
		for userID, s := range sm.sessions {
			if now.Sub(s.UpdatedAt) > sm.timeout {
				delete(sm.sessions, userID)
			}
		}

		sm.mu.Unlock()
	}
}
