package wal

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// rw-r--r-- (擁有者讀寫，其他人唯讀)
const FileModeReadOnly fs.FileMode = 0644

// WAL 以 JSON Lines 格式追加寫入的日誌檔
// Write 只寫入緩衝區，Sync 才會刷入硬碟
type WAL struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewWAL 開啟或建立一個 WAL 檔案
// O_WRONLY 只寫模式 (journal 只追加，不回讀)
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(file)
	return &WAL{
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

// Write 寫入一筆資料 (緩衝)
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// Sync 將緩衝區寫出並強制刷入硬碟
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncLocked()
}

func (w *WAL) syncLocked() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close 刷入剩餘資料並關閉檔案
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	syncErr := w.syncLocked()
	closeErr := w.file.Close()
	return errors.Join(syncErr, closeErr)
}
