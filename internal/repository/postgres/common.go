package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/pagination"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func limitOffset(page, perPage int) (int, int) {
	p := pagination.New(page, perPage)
	return p.PerPage, p.Offset
}

func marshalText(t domain.LocalizedText) ([]byte, error) {
	if t == nil {
		t = domain.LocalizedText{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal localized text: %w", err)
	}
	return data, nil
}

func unmarshalText(data []byte) (domain.LocalizedText, error) {
	t := domain.LocalizedText{}
	if len(data) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal localized text: %w", err)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
