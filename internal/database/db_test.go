package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("app", "s3cret", "db.local", "3306", "recitations")
	assert.True(t, strings.HasPrefix(dsn, "app:s3cret@tcp(db.local:3306)/recitations?"), dsn)

	// Conditional updates decide success by RowsAffected; without
	// clientFoundRows a rewrite of identical values reports zero rows
	// and gets mistaken for a missing row.
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
}

func TestBuildDSNEmptyPassword(t *testing.T) {
	dsn := buildDSN("app", "", "localhost", "3306", "recitations")
	assert.True(t, strings.HasPrefix(dsn, "app@tcp("), dsn)
	assert.NotContains(t, dsn, ":@")
}
