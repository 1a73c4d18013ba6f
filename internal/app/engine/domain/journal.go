package domain

import "github.com/google/uuid"

// JournalEntry 已套用動作的稽核紀錄 注意欄位排序以避免 Padding
// 只寫不讀: 帳本不會從 journal 還原 (每次執行都從空帳本開始)
type JournalEntry struct {
	// Sequence: 本次執行內的順序號 (1, 2, 3...)
	Sequence uint64 `json:"seq"`
	// Value: 帶正負號的金額，爭議/結算為 0
	Value float64 `json:"value"`
	// RunID: 本次執行的識別碼
	RunID uuid.UUID `json:"run_id"`
	// Kind: deposit / withdrawal / dispute / resolve / chargeback
	Kind       string     `json:"kind"`
	TransferID TransferID `json:"tx"`
	ClientID   ClientID   `json:"client"`
}

// NewJournalEntry 由動作組出 journal 紀錄
func NewJournalEntry(runID uuid.UUID, seq uint64, action Action) JournalEntry {
	entry := JournalEntry{
		Sequence:   seq,
		RunID:      runID,
		TransferID: action.TransferID,
		ClientID:   action.ClientID,
	}
	if action.Kind != nil {
		entry.Kind = action.Kind.Name()
	}
	if t, ok := action.Kind.(Transfer); ok {
		entry.Value = t.Value
	}
	return entry
}
