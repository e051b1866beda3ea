package api

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/heightwalk/pkg/config"
	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/heightmap"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

// Response headers.
const (
	HeaderRunID = "X-Run-ID"
	HeaderSeed  = "X-Seed"
)

var contentTypes = map[string]string{
	pipeline.FormatRaw:  "application/octet-stream",
	pipeline.FormatRGBA: "application/octet-stream",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatMask: "image/png",
	pipeline.FormatTIFF: "image/tiff",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint32{"hello": pipeline.Hello()})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": config.Names()})
}

// handleGenerate runs the full pipeline. The body, when present, is a JSON
// pipeline.Options document applied over the chosen preset (or the default
// options). Query parameters: format, preset, seed.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := pipeline.DefaultOptions()
	if name := q.Get("preset"); name != "" {
		p, ok := config.Builtin(name)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown preset %q (one of: %s)", name, strings.Join(config.Names(), ", ")))
			return
		}
		opts = p.Options()
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options"))
			return
		}
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatPNG
	}
	opts.Formats = []string{format}

	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "seed must be an unsigned integer"))
			return
		}
		opts.Seed = &n
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set(HeaderRunID, res.ID)
	w.Header().Set(HeaderSeed, fmt.Sprintf("%016x", res.Seed))
	writeBytes(w, contentTypes[format], res.Artifacts[format])
}

// handleImage converts raw heights into RGBA mask bytes.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, contentTypes[pipeline.FormatRGBA], pipeline.ToImage(body))
}

// handleBlur blurs raw heights. Query parameters: radius (default 8),
// detail_max (enables the detail pass), saturate, width (defaults to the
// inferred square side).
func (s *Server) handleBlur(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius, err := intParam(q.Get("radius"), pipeline.DefaultRadius)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := pipeline.ValidateRadius(radius); err != nil {
		writeError(w, err)
		return
	}

	var opts []heightmap.Option
	if v := q.Get("detail_max"); v != "" {
		d, err := intParam(v, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := pipeline.ValidateDetailMax(d); err != nil {
			writeError(w, err)
			return
		}
		opts = append(opts, heightmap.WithDetail(d))
	}
	if v := q.Get("saturate"); v != "" {
		sat, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "saturate must be a boolean"))
			return
		}
		if sat {
			opts = append(opts, heightmap.WithSaturation())
		}
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	width, height := pipeline.Side(len(body))
	if v := q.Get("width"); v != "" {
		width, err = intParam(v, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		if width <= 0 || len(body)%width != 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput,
				"width %d does not divide a body of %d bytes", width, len(body)))
			return
		}
		height = len(body) / width
	}

	out := heightmap.Composite(body, width, height, radius, opts...)
	writeBytes(w, contentTypes[pipeline.FormatRaw], out)
}

// =============================================================================
// Helpers
// =============================================================================

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func errorCode(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

func writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status := errors.HTTPStatus(err)

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorResponse{Error: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return body, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid integer %q", v)
	}
	return n, nil
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}
