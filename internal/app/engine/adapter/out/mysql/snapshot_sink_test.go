package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JoeShih716/go-payments-engine/internal/app/engine/domain"
	pkgmysql "github.com/JoeShih716/go-payments-engine/pkg/mysql"
)

var insertClientAccounts = regexp.QuoteMeta("INSERT INTO `client_accounts`")

// newMockSink 以 sqlmock 取代真實連線，設定與 pkg/mysql.NewClient 相同
func newMockSink(t *testing.T) (*SnapshotSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewSnapshotSink(pkgmysql.NewClientFromDB(gdb)), mock
}

func snapshots(n int) []domain.ClientSnapshot {
	out := make([]domain.ClientSnapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.ClientSnapshot{
			ClientID: domain.ClientID(i + 1),
			Account:  domain.ClientAccount{Total: 2.0, Held: 0.5},
		})
	}
	return out
}

func TestSnapshotSink_Save(t *testing.T) {
	sink, mock := newMockSink(t)

	mock.ExpectBegin()
	mock.ExpectExec(insertClientAccounts).WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	err := sink.Save(context.Background(), uuid.New(), snapshots(2))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotSink_SaveSplitsBatches(t *testing.T) {
	sink, mock := newMockSink(t)

	// 501 筆 → 500 + 1 兩次 INSERT，仍在同一個 Transaction
	mock.ExpectBegin()
	mock.ExpectExec(insertClientAccounts).WillReturnResult(sqlmock.NewResult(1, batchSize))
	mock.ExpectExec(insertClientAccounts).WillReturnResult(sqlmock.NewResult(batchSize+1, 1))
	mock.ExpectCommit()

	err := sink.Save(context.Background(), uuid.New(), snapshots(batchSize+1))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotSink_SaveRollsBackOnError(t *testing.T) {
	sink, mock := newMockSink(t)
	dbErr := errors.New("duplicate entry for key idx_run_client")
	runID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(insertClientAccounts).WillReturnError(dbErr)
	mock.ExpectRollback()

	err := sink.Save(context.Background(), runID, snapshots(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorContains(t, err, "save snapshot "+runID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotSink_SaveEmptyIsNoop(t *testing.T) {
	sink, mock := newMockSink(t)

	// 沒有設定任何 expectation，任何 SQL 都會讓 sqlmock 回傳錯誤
	require.NoError(t, sink.Save(context.Background(), uuid.New(), nil))
	require.NoError(t, sink.Save(context.Background(), uuid.New(), []domain.ClientSnapshot{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToRows(t *testing.T) {
	runID := uuid.MustParse("6f1c1a52-8c1e-4b5e-9d43-0d7f8f0a2b11")
	rows := toRows(runID, []domain.ClientSnapshot{
		{ClientID: 2, Account: domain.ClientAccount{Total: 3.0, Held: 1.0}},
		{ClientID: 1, Account: domain.ClientAccount{Total: -1.0, Access: domain.AccessLocked}},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, runID[:], rows[0].RunID)
	assert.Equal(t, uint16(2), rows[0].ClientID)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, 2.0, rows[0].Available)
	assert.Equal(t, 1.0, rows[0].Held)
	assert.False(t, rows[0].Locked)

	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, -1.0, rows[1].Available)
	assert.True(t, rows[1].Locked)
}

func TestToRows_Empty(t *testing.T) {
	assert.Empty(t, toRows(uuid.New(), nil))
}

func TestSqlClientAccount_TableName(t *testing.T) {
	assert.Equal(t, "client_accounts", (&sqlClientAccount{}).TableName())
}
