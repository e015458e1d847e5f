package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want domain.ErrorCode
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.CodeNotFound},
		{"wrapped record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), domain.CodeNotFound},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, domain.CodeConflict},
		{"sqlite unique violation", errors.New("UNIQUE constraint failed: user.user_name"), domain.CodeConflict},
		{"cancelled", context.Canceled, domain.CodeInternal},
		{"unknown", errors.New("disk on fire"), domain.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("op", tc.in)
			if !domain.IsCode(err, tc.want) {
				t.Fatalf("want code %q, got %q (%v)", tc.want, domain.CodeOf(err), err)
			}
			if !errors.Is(err, tc.in) {
				t.Fatalf("cause should be preserved: %v", err)
			}
		})
	}
}

func TestMapErrorPassesDomainErrorThrough(t *testing.T) {
	in := domain.MemberNotFound("op", "x@example.com")
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough domain error")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must map to nil")
	}
}
