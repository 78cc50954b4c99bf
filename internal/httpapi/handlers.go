package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/partmesh/internal/export"
	"github.com/Faultbox/partmesh/pkg/formats"
	"github.com/Faultbox/partmesh/pkg/scene"
)

// Response headers set on successful exports.
const (
	TriangleCountHeader = "X-Triangle-Count"
	WarningCountHeader  = "X-Warning-Count"
)

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	name := formats.SolidName(s.defaults.SolidName)
	if v := r.URL.Query().Get("name"); v != "" {
		name = formats.SolidName(v)
	}

	h := w.Header()
	h.Set("Content-Type", res.Format.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.stl"`, name))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set(TriangleCountHeader, strconv.Itoa(res.TriangleCount))
	h.Set(WarningCountHeader, strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// run reads the body and exports it. On failure the error response has
// already been written.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*export.Result, bool) {
	id := RequestID(r.Context())

	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	opts.RequestID = id

	var src io.Reader = r.Body
	if s.cfg.MaxBodyBytes > 0 {
		src = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	ctx := r.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	res, err := export.Export(ctx, body, opts, s.log)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

// options overlays query parameters on the server defaults.
func (s *Server) options(r *http.Request) (export.Options, error) {
	opts := s.defaults
	q := r.URL.Query()

	if v := q.Get("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: normalize=%q", errBadRequest, v)
		}
		opts.ApplyDisplayNormalization = b
	}
	for key, dst := range map[string]*float64{
		"target_extent": &opts.TargetExtent,
		"unit_scale":    &opts.UnitScale,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("%w: %s=%q", errBadRequest, key, v)
		}
		*dst = f
	}
	if v := q.Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if v := q.Get("up_axis"); v != "" {
		a, err := export.ParseUpAxis(v)
		if err != nil {
			return opts, err
		}
		opts.UpAxis = a
	}
	if v := q.Get("name"); v != "" {
		opts.SolidName = v
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []zap.Field{zap.String("request_id", RequestID(r.Context())), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		s.log.Error("export failed", fields...)
	} else {
		s.log.Warn("export rejected", fields...)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, export.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, scene.ErrMalformedContainer),
		errors.Is(err, scene.ErrInvalidSceneSyntax),
		errors.Is(err, scene.ErrUnresolvableReference),
		errors.Is(err, scene.ErrMissingAttribute),
		errors.Is(err, scene.ErrUnsupportedComponentType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
