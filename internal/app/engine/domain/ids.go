package domain

import "strconv"

// ClientID 客戶識別碼 (16-bit)
type ClientID uint16

func (id ClientID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// TransferID 交易識別碼 (32-bit)，整個執行期間全域唯一
type TransferID uint32

func (id TransferID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
