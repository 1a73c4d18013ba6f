package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/adapter/in/csvio"
	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

// Applier 套用動作並提供最終快照
// usecase.Processor、usecase.MutexProcessor、usecase.SequencedApplier 都符合
type Applier interface {
	Apply(action domain.Action) error
	Snapshot() []domain.ClientSnapshot
}

// applierErr 非同步的 Applier (Sequencer) 額外回報自身錯誤
type applierErr interface {
	Err() error
}

// Journal 已套用動作的稽核日誌 (pkg/wal.WAL)
type Journal interface {
	Write(v any) error
	Sync() error
}

// SnapshotSink 額外的快照輸出 (MySQL)
type SnapshotSink interface {
	Save(ctx context.Context, runID uuid.UUID, snapshots []domain.ClientSnapshot) error
}

// Stats 執行統計
type Stats struct {
	Rows      int
	Malformed int
	Applied   int
	// Rejected 依錯誤種類統計被拒絕的動作
	Rejected map[string]int
}

// RejectedTotal 被拒絕的動作總數
func (s Stats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Runner 讀取 CSV 動作、依序套用、輸出報表
type Runner struct {
	applier Applier
	log     *zap.Logger
	journal Journal
	sink    SnapshotSink
	runID   uuid.UUID
}

// RunnerOption 定義了 Runner 的配置選項函數
type RunnerOption func(*Runner)

// WithJournal 每個成功套用的動作寫入 journal
func WithJournal(journal Journal) RunnerOption {
	return func(r *Runner) {
		r.journal = journal
	}
}

// WithSnapshotSink 報表輸出後額外寫入 sink
func WithSnapshotSink(sink SnapshotSink) RunnerOption {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithRunID 指定執行識別碼 (預設隨機產生)
func WithRunID(id uuid.UUID) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner 建立 Runner
func NewRunner(applier Applier, log *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		applier: applier,
		log:     log,
		runID:   uuid.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(zap.String("run_id", r.runID.String()))
	return r
}

// RunID 回傳執行識別碼
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Run 處理整個輸入
// 格式錯誤的資料列與被拒絕的動作只記錄 warning，I/O 錯誤才會中止
//
// 參數:
//
//	ctx: 上下文，取消時在下一列之前停止
//	in: CSV 輸入
//	out: 報表輸出
//
// 回傳:
//
//	Stats: 執行統計
//	error: 致命錯誤
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	stats := Stats{Rejected: make(map[string]int)}

	reader, err := csvio.NewReader(in)
	if err != nil {
		return stats, fmt.Errorf("open input: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		action, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++

		var rowErr *csvio.RowError
		if errors.As(err, &rowErr) {
			stats.Malformed++
			r.log.Warn("action invalid", zap.Int("row", rowErr.Row), zap.Error(rowErr.Err))
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("read input: %w", err)
		}

		if err := r.applier.Apply(action); err != nil {
			if aerr := r.applierErr(); aerr != nil {
				return stats, aerr
			}
			stats.Rejected[rejectReason(err)]++
			r.log.Warn("action not applied",
				zap.Int("row", stats.Rows-1),
				zap.String("kind", action.Kind.Name()),
				zap.Uint16("client", uint16(action.ClientID)),
				zap.Uint32("tx", uint32(action.TransferID)),
				zap.Error(err),
			)
			continue
		}
		stats.Applied++

		if r.journal != nil {
			entry := domain.NewJournalEntry(r.runID, uint64(stats.Applied), action)
			if err := r.journal.Write(entry); err != nil {
				return stats, fmt.Errorf("write journal: %w", err)
			}
		}
	}

	if r.journal != nil {
		if err := r.journal.Sync(); err != nil {
			return stats, fmt.Errorf("sync journal: %w", err)
		}
	}

	snapshots := r.applier.Snapshot()
	if err := r.applierErr(); err != nil {
		return stats, err
	}
	if err := csvio.NewWriter(out).WriteSnapshot(snapshots); err != nil {
		return stats, fmt.Errorf("write report: %w", err)
	}

	if r.sink != nil {
		if err := r.sink.Save(ctx, r.runID, snapshots); err != nil {
			return stats, err
		}
	}

	r.log.Info("run finished",
		zap.Int("rows", stats.Rows),
		zap.Int("malformed", stats.Malformed),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.RejectedTotal()),
		zap.Int("clients", len(snapshots)),
	)
	return stats, nil
}

// applierErr Applier 本身已失效時回傳錯誤 (帳務錯誤不算)
func (r *Runner) applierErr() error {
	ae, ok := r.applier.(applierErr)
	if !ok || ae.Err() == nil {
		return nil
	}
	return fmt.Errorf("applier: %w", ae.Err())
}

// rejectReason 錯誤種類名稱 (統計用)
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrClientLocked):
		return "client_locked"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrTransferConflict):
		return "transfer_conflict"
	case errors.Is(err, domain.ErrTransferNotFound):
		return "transfer_not_found"
	case errors.Is(err, domain.ErrClientMismatch):
		return "client_mismatch"
	default:
		return "other"
	}
}
