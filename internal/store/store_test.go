package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestRebindPostgres(t *testing.T) {
	s := New(nil, Postgres)

	got := s.q(`SELECT a FROM t WHERE x = ? AND y = ? LIMIT ?`)
	want := `SELECT a FROM t WHERE x = $1 AND y = $2 LIMIT $3`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if s.forUpdate() != " FOR UPDATE" {
		t.Fatalf("expected row lock clause on postgres")
	}
}

func TestRebindSQLiteIsIdentity(t *testing.T) {
	s := New(nil, SQLite)

	query := `DELETE FROM t WHERE x = ?`
	if got := s.q(query); got != query {
		t.Fatalf("expected query unchanged, got %q", got)
	}
	if s.forUpdate() != "" {
		t.Fatalf("sqlite has no row lock clause")
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "sqlite", want: SQLite},
		{in: "Postgres", want: Postgres},
		{in: "pgx", want: Postgres},
		{in: "mysql", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDialect(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil error but got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
}
