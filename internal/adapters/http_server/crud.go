package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"alx_travel/internal/domain"
)

const maxBodyBytes = 1 << 20

// resource wires the five CRUD endpoints of one entity onto shared handlers.
// T is the domain entity, P its patch type.
type resource[T any, P any] struct {
	name       string
	newRequest func() request[P]
	render     func(T) any
	list       func(r *http.Request) ([]T, error)
	get        func(ctx context.Context, id int64) (T, error)
	create     func(ctx context.Context, p P) (T, error)
	update     func(ctx context.Context, id int64, p P) (T, error)
	remove     func(ctx context.Context, id int64) error
}

func (rs *resource[T, P]) routes(r chi.Router) {
	r.Get("/", rs.handleList)
	r.Post("/", rs.handleCreate)
	r.Get("/{id}", rs.handleGet)
	r.Put("/{id}", rs.handleUpdate(false))
	r.Patch("/{id}", rs.handleUpdate(true))
	r.Delete("/{id}", rs.handleDelete)
}

func (rs *resource[T, P]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := rs.list(r)
	if err != nil {
		writeErr(w, r, rs.name, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAll(items, rs.render))
}

func (rs *resource[T, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	v, err := rs.get(r.Context(), id)
	if err != nil {
		writeErr(w, r, rs.name, err)
		return
	}

	etag, body := calcETagAndBody(rs.render(v))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("resource", rs.name).Msg("failed to write body")
	}
}

func (rs *resource[T, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := rs.bind(w, r, false)
	if !ok {
		return
	}
	v, err := rs.create(r.Context(), p)
	if err != nil {
		writeErr(w, r, rs.name, err)
		return
	}
	writeJSON(w, http.StatusCreated, rs.render(v))
}

func (rs *resource[T, P]) handleUpdate(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		p, ok := rs.bind(w, r, partial)
		if !ok {
			return
		}
		v, err := rs.update(r.Context(), id, p)
		if err != nil {
			writeErr(w, r, rs.name, err)
			return
		}
		writeJSON(w, http.StatusOK, rs.render(v))
	}
}

func (rs *resource[T, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := rs.remove(r.Context(), id); err != nil {
		writeErr(w, r, rs.name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bind decodes and field-validates a request body. On failure the 400 has
// already been written.
func (rs *resource[T, P]) bind(w http.ResponseWriter, r *http.Request, partial bool) (P, bool) {
	var zero P
	raw, err := readObject(w, r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed JSON", err.Error())
		return zero, false
	}
	req := rs.newRequest()
	ve := &domain.ValidationError{}
	req.decode(raw, ve)
	if ve.OrNil() == nil {
		ve.Merge(check(req, partial))
	}
	if ve.OrNil() != nil {
		writeValidation(w, ve)
		return zero, false
	}
	return req.patch(), true
}

func readObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return raw, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func renderAll[T any](items []T, render func(T) any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, render(it))
	}
	return out
}

// writeErr maps service errors onto status codes.
func writeErr(w http.ResponseWriter, r *http.Request, name string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidation(w, ve)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", name+" not found")
	default:
		log.Error().Err(err).Str("resource", name).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
