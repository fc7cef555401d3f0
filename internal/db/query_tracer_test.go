package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "sql.query"},
		{"  SELECT 1  ", "SELECT 1"},
		{"SELECT id\n\tFROM cart_items\n WHERE session_id = $1", "SELECT id FROM cart_items WHERE session_id = $1"},
	}
	for _, tt := range tests {
		if got := normalizeQuery(tt.in); got != tt.want {
			t.Fatalf("normalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("x", 600)
	if got := normalizeQuery(long); len(got) != 512 {
		t.Fatalf("expected truncation to 512, got %d", len(got))
	}
}

func TestQueryOperation(t *testing.T) {
	if got := queryOperation("delete from cart_items"); got != "DELETE" {
		t.Fatalf("expected DELETE, got %q", got)
	}
	if got := queryOperation(""); got != "" {
		t.Fatalf("expected empty operation, got %q", got)
	}
}

func TestQueryTracerLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tracer := newQueryTracer(logger)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "UPDATE cart_items SET quantity = $1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{
		CommandTag: pgconn.NewCommandTag("UPDATE 1"),
		Err:        errors.New("boom"),
	})

	out := buf.String()
	for _, want := range []string{"db query", "operation=UPDATE", "rows_affected=1", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestQueryTracerSkipsWhenDebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tracer := newQueryTracer(logger)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
