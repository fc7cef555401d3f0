package db

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type queryStartContextKey struct{}

type queryStart struct {
	sql     string
	startAt time.Time
}

type queryTracer struct {
	logger *slog.Logger
}

func newQueryTracer(logger *slog.Logger) *queryTracer {
	return &queryTracer{logger: logger.With("component", "db")}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return ctx
	}
	return context.WithValue(ctx, queryStartContextKey{}, queryStart{
		sql:     normalizeQuery(data.SQL),
		startAt: time.Now(),
	})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartContextKey{}).(queryStart)
	if !ok {
		return
	}

	attrs := []any{
		"operation", queryOperation(start.sql),
		"sql", start.sql,
		"duration", time.Since(start.startAt),
	}
	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		attrs = append(attrs, "rows_affected", rows)
	}
	if data.Err != nil {
		attrs = append(attrs, "error", data.Err)
	}
	t.logger.DebugContext(ctx, "db query", attrs...)
}

func normalizeQuery(query string) string {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return "sql.query"
	}

	normalized = strings.Join(strings.Fields(normalized), " ")
	const maxLen = 512
	if len(normalized) > maxLen {
		return normalized[:maxLen]
	}
	return normalized
}

func queryOperation(query string) string {
	parts := strings.Fields(query)
	if len(parts) == 0 {
		return ""
	}
	return strings.ToUpper(parts[0])
}
