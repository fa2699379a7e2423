package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithSQLiteParam(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"/tmp/filevault.db", "/tmp/filevault.db?a=1"},
		{"file:vault.db?cache=shared", "file:vault.db?cache=shared&a=1"},
		{":memory:", ":memory:?a=1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withSQLiteParam(tt.dsn, "a=1"))
	}
}
