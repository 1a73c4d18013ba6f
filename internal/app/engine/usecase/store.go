package usecase

import "github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"

// ClientStore 客戶帳戶的儲存介面
type ClientStore interface {
	// GetOrCreate 取得帳戶，第一次引用時建立預設帳戶
	// 即使之後動作被拒絕，帳戶仍會保留
	GetOrCreate(clientID domain.ClientID) *domain.ClientAccount
	// IsLocked 帳戶是否鎖定
	IsLocked(account *domain.ClientAccount) bool
	// Snapshot 依第一次引用的順序回傳所有帳戶的複本
	Snapshot() []domain.ClientSnapshot
	// Len 帳戶數量
	Len() int
}

// TransferStore 交易紀錄的儲存介面
type TransferStore interface {
	// InsertIfAbsent 新增交易紀錄，id 已存在時回傳 domain.ErrTransferConflict
	InsertIfAbsent(transferID domain.TransferID, record domain.TransferRecord) error
	// Get 取得可原地修改的交易紀錄
	Get(transferID domain.TransferID) (*domain.TransferRecord, bool)
	// Len 交易數量
	Len() int
}
