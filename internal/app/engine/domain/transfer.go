package domain

// TransferStatus 交易狀態
//
//	Transferred <-> Disputed -> Chargebacked (終態)
type TransferStatus uint8

const (
	TransferStatusTransferred TransferStatus = iota
	TransferStatusDisputed
	TransferStatusChargebacked
)

func (s TransferStatus) String() string {
	switch s {
	case TransferStatusTransferred:
		return "transferred"
	case TransferStatusDisputed:
		return "disputed"
	case TransferStatusChargebacked:
		return "chargebacked"
	default:
		return "unknown"
	}
}

// TransferRecord 交易紀錄 注意欄位排序以避免 Padding
// 建立後只會原地修改，不會刪除
type TransferRecord struct {
	// Value: 帶正負號的金額 (正=存款，負=提款)
	Value float64
	// Client: 原交易的擁有者，爭議/結算時比對
	Client ClientID
	Status TransferStatus
}
