package api

import (
	"encoding/json"
	goerrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/pulsegrid/pkg/buildinfo"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/pipeline"
	"github.com/matzehuels/pulsegrid/pkg/render"
)

// CacheHeader reports whether a response came from the cache.
const CacheHeader = "X-Cache"

var contentTypes = map[string]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatPDF:  "application/pdf",
	render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	render.FormatJSON: "application/json",
}

type errorBody struct {
	Code   errors.Code `json:"code"`
	Error  string      `json:"error"`
	Detail string      `json:"detail,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

// handleParse lowers a DSL body to a snapshot.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, bodyError(err))
		return
	}
	opts := s.defaults
	opts.Source = string(src)
	opts.SourceName = r.URL.Query().Get("name")
	opts.Snapshot = nil

	snap, err := pipeline.Parse(opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleLayout returns the resolved geometry of the request.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := pipeline.Parse(opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	geo, _, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), snap, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, geo)
}

// handleRender runs the full pipeline for a single format.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decodeOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	if style := q.Get("style"); style != "" {
		opts.Style = style
	}
	format := q.Get("format")
	if format == "" && len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	if format == "" {
		format = pipeline.DefaultFormat
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	setCacheHeader(w, result.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// decodeOptions reads a JSON body over the server defaults.
func (s *Server) decodeOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = append([]string(nil), s.defaults.Formats...)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, bodyError(err)
	}
	return opts, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if goerrors.As(err, &tooLarge) {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if goerrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSnapshot,
		errors.ErrCodeInvalidSource, errors.ErrCodeNegativeSize, errors.ErrCodeInvalidRegion:
		return http.StatusBadRequest
	case errors.ErrCodeBindingCycle, errors.ErrCodeCellOccupied, errors.ErrCodeMissingOwner,
		errors.ErrCodeUnsetCoordinate:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	body := errorBody{Code: code, Error: errors.UserMessage(err)}
	if detail := err.Error(); detail != body.Error {
		body.Detail = detail
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[render.FormatJSON])
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
		return
	}
	w.Header().Set(CacheHeader, "miss")
}
