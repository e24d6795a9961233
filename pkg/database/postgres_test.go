package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormLogger "gorm.io/gorm/logger"
)

func TestLogLevelFor(t *testing.T) {
	assert.Equal(t, gormLogger.Silent, logLevelFor("production"))
	assert.Equal(t, gormLogger.Warn, logLevelFor("staging"))
	assert.Equal(t, gormLogger.Info, logLevelFor("development"))
	assert.Equal(t, gormLogger.Info, logLevelFor(""))
}

func TestCloseDBNil(t *testing.T) {
	assert.NoError(t, CloseDB(nil))
}
