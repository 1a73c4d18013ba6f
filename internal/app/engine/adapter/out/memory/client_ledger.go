package memory

import (
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/usecase"
)

// ClientLedger 客戶帳戶帳本
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	order: 帳戶第一次被引用的順序 (報表依此輸出)
//
// 非執行緒安全，由 usecase.Processor 獨佔使用
type ClientLedger struct {
	accounts map[domain.ClientID]*domain.ClientAccount
	order    []domain.ClientID
}

// NewClientLedger 建立一個空的 ClientLedger
func NewClientLedger() *ClientLedger {
	return &ClientLedger{
		accounts: make(map[domain.ClientID]*domain.ClientAccount),
		order:    make([]domain.ClientID, 0, 64),
	}
}

// GetOrCreate 取得帳戶，不存在時建立預設帳戶並記錄順序
//
// 參數:
//
//	clientID: 客戶 ID
//
// 回傳:
//
//	*domain.ClientAccount: 可原地修改的帳戶
func (l *ClientLedger) GetOrCreate(clientID domain.ClientID) *domain.ClientAccount {
	if account, ok := l.accounts[clientID]; ok {
		return account
	}
	account := &domain.ClientAccount{}
	l.accounts[clientID] = account
	l.order = append(l.order, clientID)
	return account
}

// IsLocked 帳戶是否鎖定
func (l *ClientLedger) IsLocked(account *domain.ClientAccount) bool {
	return account.IsLocked()
}

// Snapshot 依第一次引用的順序回傳帳戶複本
func (l *ClientLedger) Snapshot() []domain.ClientSnapshot {
	out := make([]domain.ClientSnapshot, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, domain.ClientSnapshot{
			ClientID: id,
			Account:  *l.accounts[id],
		})
	}
	return out
}

// Len 帳戶數量
func (l *ClientLedger) Len() int {
	return len(l.order)
}

var _ usecase.ClientStore = (*ClientLedger)(nil)
