package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

var reportHeader = []string{"client", "available", "held", "total", "locked"}

// Writer 輸出帳戶報表
type Writer struct {
	csv *csv.Writer
}

// NewWriter 建立 Writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteSnapshot 依傳入順序 (第一次引用的順序) 輸出所有帳戶，含標頭
// 沒有任何帳戶時什麼都不寫
//
// 參數:
//
//	snapshots: 帳戶快照
//
// 回傳:
//
//	error: 寫入錯誤
func (w *Writer) WriteSnapshot(snapshots []domain.ClientSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if err := w.csv.Write(reportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(reportHeader))
	for _, s := range snapshots {
		row[0] = s.ClientID.String()
		row[1] = FormatAmount(s.Account.Available())
		row[2] = FormatAmount(s.Account.Held)
		row[3] = FormatAmount(s.Account.Total)
		row[4] = strconv.FormatBool(s.Account.IsLocked())
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", s.ClientID, err)
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// FormatAmount 以最短且精確的十進位表示金額，至少保留一位小數 (0.0, 1.5, -1.0)
func FormatAmount(v float64) string {
	s := decimal.NewFromFloat(v).String()
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}
