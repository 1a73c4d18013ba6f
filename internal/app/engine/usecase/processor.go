package usecase

import (
	"errors"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

// Processor 是帳本唯一的寫入入口
// 獨佔兩本帳 (客戶/交易)，一次處理一個動作
//
// 非執行緒安全: 多個 goroutine 呼叫時請使用 MutexProcessor 或 Sequencer
type Processor struct {
	clients   ClientStore
	transfers TransferStore
}

// NewProcessor 建立 Processor
//
// 參數:
//
//	clients: 客戶帳本
//	transfers: 交易帳本
//
// 回傳:
//
//	*Processor: Processor 實例
func NewProcessor(clients ClientStore, transfers TransferStore) *Processor {
	return &Processor{
		clients:   clients,
		transfers: transfers,
	}
}

// Apply 驗證並套用一個動作
// 被拒絕的動作不會改變任何帳戶或交易 (帳戶第一次被引用時的建立除外)
//
// 參數:
//
//	action: 動作
//
// 回傳:
//
//	error: *domain.ActionError，可用 errors.Is 判斷種類
func (p *Processor) Apply(action domain.Action) error {
	// 1. 取得帳戶 (不存在就建立，即使後面失敗也保留)
	account := p.clients.GetOrCreate(action.ClientID)
	if p.clients.IsLocked(account) {
		return domain.NewActionError(domain.ErrClientLocked, action, "")
	}

	// 2. 依動作種類分發
	switch kind := action.Kind.(type) {
	case domain.Transfer:
		return p.applyTransfer(action, account, kind)
	case domain.Dispute:
		return p.applyDispute(action, account)
	case domain.Settle:
		return p.applySettle(action, account, kind)
	default:
		return domain.NewActionError(domain.ErrUnknownAction, action, "")
	}
}

// Snapshot 依第一次引用的順序回傳所有帳戶
func (p *Processor) Snapshot() []domain.ClientSnapshot {
	return p.clients.Snapshot()
}

// applyTransfer 處理存款/提款
func (p *Processor) applyTransfer(action domain.Action, account *domain.ClientAccount, transfer domain.Transfer) error {
	// 提款不可讓可用餘額變負
	if transfer.Value < 0 && account.Available()+transfer.Value < 0 {
		return domain.NewActionError(domain.ErrInsufficientFunds, action,
			"withdrawal would result in negative available funds")
	}

	err := p.transfers.InsertIfAbsent(action.TransferID, domain.TransferRecord{
		Value:  transfer.Value,
		Client: action.ClientID,
		Status: domain.TransferStatusTransferred,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransferConflict) {
			return domain.NewActionError(domain.ErrTransferConflict, action, "transfer exists")
		}
		return err
	}

	account.Total += transfer.Value
	return nil
}

// applyDispute 處理爭議
func (p *Processor) applyDispute(action domain.Action, account *domain.ClientAccount) error {
	record, err := p.lookupTransfer(action)
	if err != nil {
		return err
	}
	if record.Status != domain.TransferStatusTransferred {
		return domain.NewActionError(domain.ErrTransferConflict, action,
			"disputed non-transferred transfer, found "+record.Status.String())
	}

	record.Status = domain.TransferStatusDisputed
	// 提款被爭議時 Value 為負，Held 會減少
	account.Held += record.Value
	return nil
}

// applySettle 處理解除爭議/退單
func (p *Processor) applySettle(action domain.Action, account *domain.ClientAccount, settle domain.Settle) error {
	if settle.Outcome != domain.SettleResolve && settle.Outcome != domain.SettleChargeback {
		return domain.NewActionError(domain.ErrUnknownAction, action, "settle outcome "+settle.Outcome.String())
	}

	record, err := p.lookupTransfer(action)
	if err != nil {
		return err
	}
	if record.Status != domain.TransferStatusDisputed {
		return domain.NewActionError(domain.ErrTransferConflict, action,
			"settled non-disputed transfer, found "+record.Status.String())
	}

	switch settle.Outcome {
	case domain.SettleResolve:
		record.Status = domain.TransferStatusTransferred
		account.Held -= record.Value
	case domain.SettleChargeback:
		record.Status = domain.TransferStatusChargebacked
		account.Held -= record.Value
		account.Total -= record.Value
		account.Access = domain.AccessLocked
	}
	return nil
}

// lookupTransfer 取得交易，並確認動作的客戶就是原交易的客戶
func (p *Processor) lookupTransfer(action domain.Action) (*domain.TransferRecord, error) {
	record, ok := p.transfers.Get(action.TransferID)
	if !ok {
		return nil, domain.NewActionError(domain.ErrTransferNotFound, action, "")
	}
	if record.Client != action.ClientID {
		return nil, domain.NewActionError(domain.ErrClientMismatch, action,
			"transfer belongs to client "+record.Client.String())
	}
	return record, nil
}
