package utils

import (
	"testing"

	"github.com/abelgirma/gojo-travel/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGenerateTxRef(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Listing{}, &models.Booking{}, &models.Payment{}))

	first, err := GenerateTxRef(db)
	require.NoError(t, err)
	assert.Regexp(t, `^tx_[0-9a-f]{16}$`, first)

	second, err := GenerateTxRef(db)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
