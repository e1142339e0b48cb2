package db

import (
	"strings"
	"testing"
)

func Test_sqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"scrapbook.db", "scrapbook.db?_foreign_keys=on"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared&_foreign_keys=on"},
		{"x.db?_foreign_keys=off", "x.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func Test_mysqlDSN(t *testing.T) {
	got, err := mysqlDSN("user:pw@tcp(localhost:3306)/scrapbook?collation=latin1_swedish_ci")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "collation=utf8mb4_unicode_ci") || !strings.Contains(got, "tcp(localhost:3306)/scrapbook") {
		t.Errorf("mysqlDSN = %q", got)
	}
	if _, err = mysqlDSN("not a dsn"); err == nil {
		t.Error("expected an error for an invalid DSN")
	}
}
