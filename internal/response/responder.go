package response

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const errorPage = "error"

type Responder struct {
	DebugMode bool
	// Pages are the HTML templates by page name; each one executes as a whole document
	Pages map[string]*template.Template
}

type errorPageData struct {
	Message string
	Status  int
}

// RespondAndLogError will respond with generic error code (500) and log with slog.LevelError level
func (rr *Responder) RespondAndLogError(w http.ResponseWriter, ctx context.Context, err error) {
	errId := uuid.NewString()
	log(ctx, slog.LevelError, err.Error(), slog.String("err_id", errId))
	rr.renderError(w, ctx, http.StatusInternalServerError, err.Error(), errId)
}

func (rr *Responder) RespondAndLogCustom(w http.ResponseWriter, ctx context.Context, err error, lvl slog.Level, status int) {
	errId := uuid.NewString()
	log(ctx, lvl, err.Error(), slog.String("err_id", errId))
	rr.renderError(w, ctx, status, err.Error(), errId)
}

// PageError is RespondAndLogCustom for browser routes: the error page is rendered instead of JSON
func (rr *Responder) PageError(w http.ResponseWriter, ctx context.Context, err error, lvl slog.Level, status int) {
	errId := uuid.NewString()
	log(ctx, lvl, err.Error(), slog.String("err_id", errId))

	if _, ok := rr.Pages[errorPage]; !ok {
		rr.renderError(w, ctx, status, err.Error(), errId)
		return
	}

	bs, renderErr := rr.execute(errorPage, errorPageData{Message: rr.message(err.Error(), errId), Status: status})
	if renderErr != nil {
		log(ctx, slog.LevelError, "cannot render error page: "+renderErr.Error())
		rr.renderError(w, ctx, status, err.Error(), errId)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.Copy(w, bytes.NewReader(bs))
}

func (rr *Responder) SendJson(w http.ResponseWriter, ctx context.Context, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		rr.RespondAndLogError(w, ctx, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = io.Copy(w, bytes.NewReader(bs))
}

func (rr *Responder) SendXml(w http.ResponseWriter, contentType string, bs []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, bytes.NewReader(bs))
}

// RenderPage executes the named page into a buffer first, so a template failure
// still produces a clean 500
func (rr *Responder) RenderPage(w http.ResponseWriter, ctx context.Context, name string, data any) {
	bs, err := rr.execute(name, data)
	if err != nil {
		rr.RespondAndLogError(w, ctx, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.Copy(w, bytes.NewReader(bs))
}

func (rr *Responder) execute(name string, data any) ([]byte, error) {
	t, ok := rr.Pages[name]
	if !ok {
		return nil, &missingPageError{name: name}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type missingPageError struct {
	name string
}

func (e *missingPageError) Error() string {
	return "no such page template: " + e.name
}

func (rr *Responder) message(message, errId string) string {
	if rr.DebugMode {
		r, s := utf8.DecodeRuneInString(message)
		return string(unicode.ToUpper(r)) + message[s:]
	}

	return "Unknown error occurred while processing your request. Error ID: " + errId
}

func (rr *Responder) renderError(w http.ResponseWriter, ctx context.Context, status int, message, errId string) {
	data := map[string]any{
		"error": rr.message(message, errId),
	}

	bs, err := json.Marshal(data)
	if err == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		log(ctx, slog.LevelError, "cannot marshall error response body: "+err.Error())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		bs = []byte("unknown error")
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.Copy(w, bytes.NewReader(bs))
}

// Needed because it skips one more frame item than the slog.Log
func log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l := slog.Default()

	if !l.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	var pcs [1]uintptr
	// skip [runtime.Callers, this function, this function's caller]
	runtime.Callers(3, pcs[:])
	pc = pcs[0]

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
