package mysql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
	"github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

// batchSize 每次 INSERT 的筆數
const batchSize = 500

// sqlClientAccount 對應資料庫的 client_accounts 表
// 每次執行寫入一組快照，以 run_id 區分；引擎不會讀回
type sqlClientAccount struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	RunID     []byte  `gorm:"column:run_id;type:binary(16);uniqueIndex:idx_run_client"`
	ClientID  uint16  `gorm:"column:client_id;uniqueIndex:idx_run_client"`
	Position  int     `gorm:"column:position"` // 第一次引用的順序
	Available float64 `gorm:"column:available"`
	Held      float64 `gorm:"column:held"`
	Total     float64 `gorm:"column:total"`
	Locked    bool    `gorm:"column:locked"`
	CreatedAt int64   `gorm:"autoCreateTime:milli"` // 自動寫入時間
}

func (*sqlClientAccount) TableName() string {
	return "client_accounts"
}

// SnapshotSink 將最終帳戶快照寫入 MySQL
type SnapshotSink struct {
	client *mysql.Client
}

// NewSnapshotSink 建立 SnapshotSink
func NewSnapshotSink(client *mysql.Client) *SnapshotSink {
	return &SnapshotSink{
		client: client,
	}
}

// Migrate 建立或更新 client_accounts 表
func (s *SnapshotSink) Migrate(ctx context.Context) error {
	if err := s.client.DB().WithContext(ctx).AutoMigrate(&sqlClientAccount{}); err != nil {
		return fmt.Errorf("migrate client_accounts: %w", err)
	}
	return nil
}

// Save 在同一個 Transaction 內寫入整組快照
//
// 參數:
//
//	ctx: 上下文
//	runID: 本次執行識別碼
//	snapshots: 帳戶快照 (第一次引用的順序)
//
// 回傳:
//
//	error: 寫入錯誤
func (s *SnapshotSink) Save(ctx context.Context, runID uuid.UUID, snapshots []domain.ClientSnapshot) error {
	rows := toRows(runID, snapshots)
	if len(rows) == 0 {
		return nil
	}
	err := s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", runID, err)
	}
	return nil
}

// toRows 將快照轉成資料表列
func toRows(runID uuid.UUID, snapshots []domain.ClientSnapshot) []sqlClientAccount {
	rows := make([]sqlClientAccount, 0, len(snapshots))
	for i, s := range snapshots {
		rows = append(rows, sqlClientAccount{
			RunID:     runID[:],
			ClientID:  uint16(s.ClientID),
			Position:  i,
			Available: s.Account.Available(),
			Held:      s.Account.Held,
			Total:     s.Account.Total,
			Locked:    s.Account.IsLocked(),
		})
	}
	return rows
}
