package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrClientLocked 帳戶已鎖定
	ErrClientLocked = errors.New("client locked")

	// ErrInsufficientFunds 可用餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransferConflict 交易已存在，或交易狀態不允許此動作
	ErrTransferConflict = errors.New("transfer conflict")

	// ErrTransferNotFound 找不到交易
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrClientMismatch 動作的客戶與原交易的客戶不同
	ErrClientMismatch = errors.New("client mismatch")

	// ErrUnknownAction 未知的動作種類
	ErrUnknownAction = errors.New("unknown action")
)

// ActionError 描述一個被拒絕的動作
// Kind 為上方的 sentinel，可用 errors.Is 判斷
type ActionError struct {
	Kind       error
	ClientID   ClientID
	TransferID TransferID
	Reason     string
}

func (e *ActionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: client %d, tx %d", e.Kind, e.ClientID, e.TransferID)
	}
	return fmt.Sprintf("%s: client %d, tx %d: %s", e.Kind, e.ClientID, e.TransferID, e.Reason)
}

func (e *ActionError) Unwrap() error { return e.Kind }

// NewActionError 建立 ActionError
func NewActionError(kind error, action Action, reason string) *ActionError {
	return &ActionError{
		Kind:       kind,
		ClientID:   action.ClientID,
		TransferID: action.TransferID,
		Reason:     reason,
	}
}
