package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"portfolio/internal/store"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, store.ErrDuplicateID},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, nil},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if tt.want == nil && tt.err != nil {
				if got != tt.err {
					t.Errorf("translateError() = %v, want original error", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("translateError() = %v, want %v", got, tt.want)
			}
		})
	}
}
