package domain

// Access 帳戶狀態
// 為了節省記憶體，使用 uint8
type Access uint8

const (
	AccessActive Access = iota
	AccessLocked
)

// ClientAccount 客戶帳戶
// 零值即為預設帳戶 (Total=0, Held=0, Active)
type ClientAccount struct {
	Total  float64
	Held   float64
	Access Access
}

// Available 可用餘額 = Total - Held
func (a *ClientAccount) Available() float64 {
	return a.Total - a.Held
}

// IsLocked 帳戶是否已被鎖定 (發生過退單)
func (a *ClientAccount) IsLocked() bool {
	return a.Access == AccessLocked
}

// ClientSnapshot 帳戶快照，輸出報表用
type ClientSnapshot struct {
	ClientID ClientID
	Account  ClientAccount
}
