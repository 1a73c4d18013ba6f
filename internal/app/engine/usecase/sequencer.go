package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

// ErrSequencerStopped Sequencer 已停止，請求沒有被處理
var ErrSequencerStopped = errors.New("sequencer stopped")

// sequencerRequest 請求包裝，讓 Submit 可以等待結果
type sequencerRequest struct {
	fn     func(p *Processor) error
	Result chan error // 讓 Submit 等這個 channel
}

// Sequencer 單一寫入者 (LMAX 風格)
//
// Submit(等待) -> Channel -> Run Loop (唯一碰 Processor 的 goroutine) -> Result Channel -> Submit(收到結果)
type Sequencer struct {
	processor *Processor
	// 輸送帶 負責接收請求
	requestChan chan *sequencerRequest
	// run loop 結束時關閉
	done chan struct{}
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewSequencer 建立 Sequencer
//
// 參數:
//
//	processor: 被獨佔的 Processor
//	buffer: 輸送帶長度
//
// 回傳:
//
//	*Sequencer: Sequencer 實例，需呼叫 Start 才會開始處理
func NewSequencer(processor *Processor, buffer int) *Sequencer {
	if buffer <= 0 {
		buffer = 1000
	}
	return &Sequencer{
		processor:   processor,
		requestChan: make(chan *sequencerRequest, buffer),
		done:        make(chan struct{}),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &sequencerRequest{
					Result: make(chan error, 1),
				}
			},
		},
	}
}

// Start 啟動核心 loop (非同步)
func (s *Sequencer) Start(ctx context.Context) {
	go s.run(ctx)
}

// Done 回傳 run loop 結束時關閉的 channel
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Submit 送出動作並等待處理結果
//
// 參數:
//
//	ctx: 上下文，只影響排隊階段
//	action: 動作
//
// 回傳:
//
//	error: Processor.Apply 的結果、ctx 錯誤或 ErrSequencerStopped
func (s *Sequencer) Submit(ctx context.Context, action domain.Action) error {
	return s.submit(ctx, func(p *Processor) error {
		return p.Apply(action)
	})
}

// Snapshot 在 run loop 內取得帳戶快照
func (s *Sequencer) Snapshot(ctx context.Context) ([]domain.ClientSnapshot, error) {
	var out []domain.ClientSnapshot
	err := s.submit(ctx, func(p *Processor) error {
		out = p.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Sequencer) submit(ctx context.Context, fn func(p *Processor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// 1. 放入輸送帶 (使用 sync.Pool 減少 GC)
	req := s.requestPool.Get().(*sequencerRequest)
	req.fn = fn
	select {
	case <-req.Result:
	default:
	}

	select {
	case s.requestChan <- req:
	case <-ctx.Done():
		s.requestPool.Put(req)
		return ctx.Err()
	case <-s.done:
		s.requestPool.Put(req)
		return ErrSequencerStopped
	}

	// 2. 等待結果。loop 已結束時請求可能永遠不會被處理，不放回 Pool
	select {
	case err := <-req.Result:
		req.fn = nil
		s.requestPool.Put(req)
		return err
	case <-s.done:
		select {
		case err := <-req.Result:
			return err
		default:
			return ErrSequencerStopped
		}
	}
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的請求處理完
			s.drain()
			return
		case req := <-s.requestChan:
			req.Result <- req.fn(s.processor)
		}
	}
}

func (s *Sequencer) drain() {
	for {
		select {
		case req := <-s.requestChan:
			req.Result <- req.fn(s.processor)
		default:
			return
		}
	}
}

// SequencedApplier 讓 Sequencer 符合同步的 Apply/Snapshot 介面
// 第一個失敗 (非帳務錯誤) 會記在 Err
type SequencedApplier struct {
	seq *Sequencer
	ctx context.Context
	err error
}

// Applier 回傳綁定 ctx 的同步介面
func (s *Sequencer) Applier(ctx context.Context) *SequencedApplier {
	return &SequencedApplier{seq: s, ctx: ctx}
}

// Apply 送出動作並等待結果
func (a *SequencedApplier) Apply(action domain.Action) error {
	err := a.seq.Submit(a.ctx, action)
	if err != nil && a.err == nil && (errors.Is(err, ErrSequencerStopped) || a.ctx.Err() != nil) {
		a.err = err
	}
	return err
}

// Snapshot 取得快照，失敗時回傳 nil 並記錄在 Err
func (a *SequencedApplier) Snapshot() []domain.ClientSnapshot {
	snap, err := a.seq.Snapshot(a.ctx)
	if err != nil {
		if a.err == nil {
			a.err = err
		}
		return nil
	}
	return snap
}

// Err 回傳 Sequencer 本身的錯誤 (停止或 ctx 取消)
func (a *SequencedApplier) Err() error {
	return a.err
}
