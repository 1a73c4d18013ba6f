package usecase

import (
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

// MutexProcessor 用一把 Mutex 保護整個 Processor
// 讓多個 goroutine 可以安全地呼叫 Apply，順序以取得鎖的先後為準
type MutexProcessor struct {
	mu        sync.Mutex
	processor *Processor
}

// NewMutexProcessor 建立 MutexProcessor
func NewMutexProcessor(processor *Processor) *MutexProcessor {
	return &MutexProcessor{processor: processor}
}

// Apply 加鎖後套用動作
func (m *MutexProcessor) Apply(action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processor.Apply(action)
}

// Snapshot 加鎖後取得帳戶快照
func (m *MutexProcessor) Snapshot() []domain.ClientSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processor.Snapshot()
}
