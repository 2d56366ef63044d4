package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	dbSystemKey     = "db.system"
	dbTableKey      = "db.table"
	dbOperationKey  = "db.operation"
	dbStatementKey  = "db.statement"
	maxStatementLen = 500

	spanInstanceKey  = "otel:span"
	startInstanceKey = "otel:start"
)

// GORMTracingPlugin opens a span around every gorm operation. Statements are
// recorded without their bound values.
func GORMTracingPlugin() gorm.Plugin {
	return &tracingPlugin{tracer: otel.Tracer("nexus/gorm")}
}

type tracingPlugin struct {
	tracer trace.Tracer
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

// registerFunc is the Register method of a gorm callback
type registerFunc func(name string, fn func(*gorm.DB)) error

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation     string
		before, after registerFunc
	}{
		{"SELECT", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"INSERT", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"UPDATE", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"DELETE", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"ROW", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"RAW", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		op := h.operation
		name := "telemetry:" + strings.ToLower(op)
		if err := h.before(name+"_start", func(tx *gorm.DB) { p.start(tx, op) }); err != nil {
			return fmt.Errorf("register %s_start: %w", name, err)
		}
		if err := h.after(name+"_end", p.end); err != nil {
			return fmt.Errorf("register %s_end: %w", name, err)
		}
	}
	return nil
}

func (p *tracingPlugin) start(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}

	_, span := p.tracer.Start(ctx, "db."+strings.ToLower(operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(dbSystemKey, dbSystem(tx)),
			attribute.String(dbTableKey, table),
			attribute.String(dbOperationKey, operation),
		),
	)
	tx.InstanceSet(spanInstanceKey, span)
	tx.InstanceSet(startInstanceKey, time.Now())
}

func (p *tracingPlugin) end(tx *gorm.DB) {
	v, ok := tx.InstanceGet(spanInstanceKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if v, ok := tx.InstanceGet(startInstanceKey); ok {
		if start, ok := v.(time.Time); ok {
			span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
		}
	}
	if sql := tx.Statement.SQL.String(); sql != "" {
		if len(sql) > maxStatementLen {
			sql = sql[:maxStatementLen] + "... (truncated)"
		}
		span.SetAttributes(attribute.String(dbStatementKey, sql))
	}
	if tx.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.RowsAffected))
	}

	// A missing row is an answer, not a failure
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
}

func dbSystem(tx *gorm.DB) string {
	if tx.Dialector == nil {
		return "unknown"
	}
	if name := tx.Dialector.Name(); name != "postgres" {
		return name
	}
	return "postgresql"
}
