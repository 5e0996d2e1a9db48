package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GormConfig
		want    string
		wantErr bool
	}{
		{
			name: "explicit dsn wins",
			cfg:  GormConfig{Driver: DriverMySQL, DSN: "custom", Host: "ignored"},
			want: "custom",
		},
		{
			name: "postgres parts",
			cfg:  GormConfig{Driver: DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", DBName: "chat"},
			want: "host=db user=u password=p dbname=chat port=5432 sslmode=disable",
		},
		{
			name: "mysql parts",
			cfg:  GormConfig{Driver: DriverMySQL, Host: "db", Port: "3306", User: "u", Password: "p", DBName: "chat"},
			want: "u:p@tcp(db:3306)/chat?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite file",
			cfg:  GormConfig{Driver: DriverSQLite, DBName: "chat.db"},
			want: "chat.db?_foreign_keys=on",
		},
		{
			name:    "sqlite without file",
			cfg:     GormConfig{Driver: DriverSQLite},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     GormConfig{Driver: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDSN(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, parseLogLevel("silent"))
	assert.Equal(t, logger.Error, parseLogLevel("ERROR"))
	assert.Equal(t, logger.Info, parseLogLevel("info"))
	assert.Equal(t, logger.Warn, parseLogLevel(""))
}

func TestNewInMemorySQLite(t *testing.T) {
	db, err := NewInMemorySQLite(t.Name())
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
