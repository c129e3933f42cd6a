package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_splits (id INTEGER PRIMARY KEY, competitor_id INTEGER, control_code INTEGER, time INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_splits")
	require.NoError(t, err)
	assert.Len(t, columns, 4)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "integer", colMap["control_code"])

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SHOW COLUMNS FROM `splits`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}).
			AddRow("ID", "BIGINT UNSIGNED").
			AddRow("control_code", "bigint"))

	columns, err := GetTableColumns(db, "splits")
	require.NoError(t, err)
	assert.Equal(t, []ColumnInfo{{Field: "id", Type: "bigint unsigned"}, {Field: "control_code", Type: "bigint"}}, columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE splits (id INTEGER PRIMARY KEY, competitor_id INTEGER)").Error)

	missing, err := MissingColumns(db, "splits", []string{"id", "competitor_id", "control_code", "time"})
	require.NoError(t, err)
	assert.Equal(t, []string{"control_code", "time"}, missing)
}
