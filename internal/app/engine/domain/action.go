package domain

// Action 是帳本唯一接受的輸入
// 由外部 adapter (CSV) 組裝，核心只負責驗證與套用
type Action struct {
	ClientID   ClientID
	TransferID TransferID
	Kind       ActionKind
}

// ActionKind 是封閉的 sum type，只有本套件內的型別可以直接實作
// 新增種類時 Processor.Apply 的 type switch 必須一起修改
//
// 注意: 未匯出的 actionKind() 只擋住直接實作。外部型別嵌入 Transfer、
// Dispute 或 Settle 仍然滿足介面，但 type switch 不會匹配這些型別，
// Processor 會回傳 ErrUnknownAction
type ActionKind interface {
	actionKind()
	// Name 回傳動作名稱 (log 使用)
	Name() string
}

// Transfer 存款或提款
// Value > 0 為存款，Value < 0 為提款，兩者共用同一條路徑
type Transfer struct {
	Value float64
}

// Dispute 爭議一筆既有交易
type Dispute struct{}

// SettleOutcome 爭議的結算方式
type SettleOutcome uint8

const (
	// 解除爭議，款項回到可用餘額
	SettleResolve SettleOutcome = iota + 1
	// 退單，沖銷原交易並鎖定帳戶
	SettleChargeback
)

func (o SettleOutcome) String() string {
	switch o {
	case SettleResolve:
		return "resolve"
	case SettleChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// Settle 結束一筆爭議
type Settle struct {
	Outcome SettleOutcome
}

func (Transfer) actionKind() {}
func (Dispute) actionKind()  {}
func (Settle) actionKind()   {}

func (t Transfer) Name() string {
	if t.Value < 0 {
		return "withdrawal"
	}
	return "deposit"
}

func (Dispute) Name() string { return "dispute" }

func (s Settle) Name() string { return s.Outcome.String() }

// NewDeposit 建立存款動作
func NewDeposit(client ClientID, tx TransferID, amount float64) Action {
	return Action{ClientID: client, TransferID: tx, Kind: Transfer{Value: amount}}
}

// NewWithdrawal 建立提款動作，amount 為正數，內部轉為負值
func NewWithdrawal(client ClientID, tx TransferID, amount float64) Action {
	return Action{ClientID: client, TransferID: tx, Kind: Transfer{Value: -amount}}
}

// NewDispute 建立爭議動作
func NewDispute(client ClientID, tx TransferID) Action {
	return Action{ClientID: client, TransferID: tx, Kind: Dispute{}}
}

// NewResolve 建立解除爭議動作
func NewResolve(client ClientID, tx TransferID) Action {
	return Action{ClientID: client, TransferID: tx, Kind: Settle{Outcome: SettleResolve}}
}

// NewChargeback 建立退單動作
func NewChargeback(client ClientID, tx TransferID) Action {
	return Action{ClientID: client, TransferID: tx, Kind: Settle{Outcome: SettleChargeback}}
}
