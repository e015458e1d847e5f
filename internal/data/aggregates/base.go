package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
	"github.com/yungbote/taskflow-backend/internal/platform/dbctx"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/taskflow-backend/internal/data/aggregates"

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// Write runs fn in a single transaction. The returned error is nil or a
// *domain.Error.
func Write(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := statusOf(mapped)
	span.SetAttributes(attribute.String("aggregate.status", status))
	if mapped != nil {
		if domain.IsCode(mapped, domain.CodeInternal) {
			span.RecordError(mapped)
			span.SetStatus(codes.Error, status)
		}
		if domain.IsCode(mapped, domain.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// Read runs fn outside a transaction and maps its error like Write.
func Read(ctx context.Context, op string, fn func(dbc dbctx.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()
	mapped := MapError(op, fn(dbctx.Context{Ctx: ctx}))
	span.SetAttributes(attribute.String("aggregate.status", statusOf(mapped)))
	return mapped
}

func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domain.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domain.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
