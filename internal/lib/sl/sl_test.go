package sl_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "plain error", err: errors.New("broker down"), want: "broker down"},
		{name: "wrapped domain error", err: fmt.Errorf("booking.Create: %w", models.ErrAdmissionDenied),
			want: "booking.Create: " + models.ErrAdmissionDenied.Error()},
		{name: "nil does not panic", err: nil, want: "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := sl.Err(tt.err)
			assert.Equal(t, "error", attr.Key)
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}

func TestOp_InLogRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.With(sl.Op("handlers.booking.create")).Error("failed to create booking", sl.Err(models.ErrForbidden))

	assert.Contains(t, buf.String(), "op=handlers.booking.create")
	assert.Contains(t, buf.String(), `error=`)
}
