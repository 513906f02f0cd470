package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shoply/internal/domain/errs"
)

// writeJSON writes a 2xx response built by the encode callback.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps a domain error onto an HTTP status and a structured body.
// Validation errors carry the offending field, invariant violations the
// expected/actual pair, so clients can render a specific message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		ve     *errs.ValidationError
		iv     *errs.InvariantViolation
		nf     *errs.NotFoundError
		pe     *errs.PersistenceError
	)

	var e jx.Encoder
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(ve.Error())
		e.FieldStart("field")
		e.Str(ve.Field)
		e.ObjEnd()

	case errors.As(err, &iv):
		status = http.StatusConflict
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(iv.Error())
		e.FieldStart("field")
		e.Str(iv.Field)
		e.FieldStart("expected")
		e.Str(iv.Expected)
		e.FieldStart("actual")
		e.Str(iv.Actual)
		e.ObjEnd()

	case errors.As(err, &nf):
		status = http.StatusNotFound
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(nf.Error())
		e.ObjEnd()

	case errors.Is(err, errs.ErrConcurrencyConflict):
		status = http.StatusConflict
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str("concurrent modification detected, retry the request")
		e.ObjEnd()

	case errors.As(err, &pe):
		status = http.StatusBadGateway
		zctx.From(r.Context()).Error("persistence failure", zap.Error(err))
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str("storage temporarily unavailable, retry with backoff")
		e.ObjEnd()

	default:
		zctx.From(r.Context()).Error("unhandled error", zap.Error(err))
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str("internal error")
		e.ObjEnd()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
