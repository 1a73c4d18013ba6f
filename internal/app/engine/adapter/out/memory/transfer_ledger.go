package memory

import (
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/usecase"
)

// TransferLedger 交易紀錄帳本
// 紀錄建立一次後只會原地修改，不會刪除
type TransferLedger struct {
	transfers map[domain.TransferID]*domain.TransferRecord
}

// NewTransferLedger 建立一個空的 TransferLedger
func NewTransferLedger() *TransferLedger {
	return &TransferLedger{
		transfers: make(map[domain.TransferID]*domain.TransferRecord),
	}
}

// InsertIfAbsent 新增交易紀錄
// 重複的 id 會被拒絕 (避免重放的存提款被套用兩次)
//
// 參數:
//
//	transferID: 交易 ID
//	record: 交易紀錄
//
// 回傳:
//
//	error: id 已存在時回傳 domain.ErrTransferConflict
func (l *TransferLedger) InsertIfAbsent(transferID domain.TransferID, record domain.TransferRecord) error {
	if _, ok := l.transfers[transferID]; ok {
		return domain.ErrTransferConflict
	}
	l.transfers[transferID] = &record
	return nil
}

// Get 取得交易紀錄
func (l *TransferLedger) Get(transferID domain.TransferID) (*domain.TransferRecord, bool) {
	record, ok := l.transfers[transferID]
	return record, ok
}

// Len 交易數量
func (l *TransferLedger) Len() int {
	return len(l.transfers)
}

var _ usecase.TransferStore = (*TransferLedger)(nil)
