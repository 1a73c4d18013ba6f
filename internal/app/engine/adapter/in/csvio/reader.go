package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
)

var (
	// ErrUnknownKind 未知的 type 欄位
	ErrUnknownKind = errors.New("bad action kind")

	// ErrMissingAmount 存提款缺少金額
	ErrMissingAmount = errors.New("missing amount")

	// ErrInvalidAmount 金額不是有限的非負數
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrBadField client / tx 欄位無法解析
	ErrBadField = errors.New("bad field")

	// ErrMissingColumn 標頭缺少必要欄位
	ErrMissingColumn = errors.New("missing column")
)

// 輸入欄位名稱
const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// RowError 單一資料列無法轉成 Action
// 呼叫端應記錄 warning 後繼續讀下一列
type RowError struct {
	// Row 資料列序號 (從 0 開始，不含標頭)
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reader 將 CSV 資料列轉成 domain.Action
//
// 標頭必須包含 type, client, tx, amount (順序不拘，前後空白會被忽略)
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	row     int
	// empty 輸入連標頭都沒有，視為沒有任何動作
	empty bool
}

// NewReader 建立 Reader 並讀取標頭
//
// 參數:
//
//	r: CSV 輸入
//
// 回傳:
//
//	*Reader: Reader 實例
//	error: 標頭讀取失敗或缺少欄位 (空輸入不算錯誤)
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// dispute/resolve/chargeback 可能省略最後的 amount 欄位
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Reader{csv: cr, empty: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Next 讀取下一個動作
//
// 回傳:
//
//	domain.Action: 動作
//	error: io.EOF 表示結束；*RowError 表示該列格式錯誤可略過；其他錯誤為 I/O 錯誤
func (r *Reader) Next() (domain.Action, error) {
	if r.empty {
		return domain.Action{}, io.EOF
	}
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Action{}, io.EOF
		}
		return domain.Action{}, fmt.Errorf("read row %d: %w", r.row, err)
	}

	row := r.row
	r.row++

	action, err := r.parse(record)
	if err != nil {
		return domain.Action{}, &RowError{Row: row, Err: err}
	}
	return action, nil
}

// parse 將一列轉成 Action
func (r *Reader) parse(record []string) (domain.Action, error) {
	kind := r.field(record, columnType)

	client, err := strconv.ParseUint(r.field(record, columnClient), 10, 16)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: client: %v", ErrBadField, err)
	}
	tx, err := strconv.ParseUint(r.field(record, columnTx), 10, 32)
	if err != nil {
		return domain.Action{}, fmt.Errorf("%w: tx: %v", ErrBadField, err)
	}
	clientID := domain.ClientID(client)
	transferID := domain.TransferID(tx)

	switch kind {
	case "deposit", "withdrawal":
		amount, err := r.amount(record, kind)
		if err != nil {
			return domain.Action{}, err
		}
		if kind == "withdrawal" {
			return domain.NewWithdrawal(clientID, transferID, amount), nil
		}
		return domain.NewDeposit(clientID, transferID, amount), nil
	case "dispute":
		return domain.NewDispute(clientID, transferID), nil
	case "resolve":
		return domain.NewResolve(clientID, transferID), nil
	case "chargeback":
		return domain.NewChargeback(clientID, transferID), nil
	default:
		return domain.Action{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// amount 解析存提款金額，必須存在且為有限的非負數
func (r *Reader) amount(record []string, kind string) (float64, error) {
	raw := r.field(record, columnAmount)
	if raw == "" {
		return 0, fmt.Errorf("%w for action %s", ErrMissingAmount, kind)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidAmount, raw, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w %v", ErrInvalidAmount, value)
	}
	return value, nil
}

// field 取得欄位值，欄位不存在時回傳空字串
func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
