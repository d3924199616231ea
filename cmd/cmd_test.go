package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUser_Validation(t *testing.T) {
	tests := []struct {
		name, email, password, role, want string
	}{
		{"bad email", "nobody", "longenough", "photographer", "invalid email"},
		{"short password", "a@example.com", "short", "photographer", "at least 8"},
		{"unknown role", "a@example.com", "longenough", "owner", "invalid role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := createUser(tt.email, "", tt.password, tt.role)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRunCopy_Validation(t *testing.T) {
	assert.ErrorContains(t, runCopy("sqlite", "a.db", "sqlite", "a.db", true, 10, "skip"), "are the same")
	assert.ErrorContains(t, runCopy("sqlite", "a.db", "", "b.db", true, 10, "skip"), "--to-type")
	assert.ErrorContains(t, runCopy("sqlite", "", "postgres", "dsn", true, 10, "skip"), "--to-dsn")
	assert.ErrorContains(t, runCopy("sqlite", "a.db", "postgres", "dsn", true, 10, "merge"), "on-conflict")
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "short", maskDSN("short"))
	long := "host=localhost user=postgres password=secret dbname=picshare port=5432"
	assert.Equal(t, long[:50]+"...", maskDSN(long))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "sweep", "migrate", "user"} {
		assert.True(t, names[want], want)
	}
}
