package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestColumns(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.columns").WithArgs("transport_routes").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("ID").AddRow(" day_price "))

	cols, err := Columns(context.Background(), conn, "transport_routes")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cols.Has("id") || !cols.Has("DAY_PRICE") || cols.Has("night_price") {
		t.Fatalf("unexpected column set: %v", cols)
	}
	if got := cols.SelectNullable("night_price"); got != "NULL" {
		t.Fatalf("absent column should select NULL, got %q", got)
	}
	if got := cols.SelectNullable("day_price"); got != "day_price" {
		t.Fatalf("present column should select itself, got %q", got)
	}
}

func TestColumns_QueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("information_schema\\.columns").WillReturnError(errors.New("boom"))
	if _, err := Columns(context.Background(), conn, "locations"); err == nil {
		t.Fatalf("expected error")
	}
}
