package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fancystore/storeadmin/internal/domain"
	apperrors "github.com/fancystore/storeadmin/pkg/errors"
)

const (
	imageField = "image"
	// formOverhead is the room left for non-file fields in a multipart body.
	formOverhead = 1 << 20
	maxJSONBody  = 1 << 20
)

// requestBody is a create or update body after parsing. values holds the
// non-file fields of a multipart form and is nil for JSON bodies.
type requestBody struct {
	values formValues
	image  *domain.ImageUpload
}

// uploadParser reads multipart and JSON request bodies and enforces the image
// size ceiling and type allow-list.
type uploadParser struct {
	maxBytes int64
}

func newUploadParser(maxBytes int64) uploadParser {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	return uploadParser{maxBytes: maxBytes}
}

// parse dispatches on Content-Type. JSON bodies are decoded into jsonDst; an
// empty Content-Type is treated as JSON.
func (p uploadParser) parse(w http.ResponseWriter, r *http.Request, jsonDst any) (*requestBody, error) {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, apperrors.UnsupportedMediaType(ct)
		}
	}

	switch mediaType {
	case "multipart/form-data":
		return p.parseMultipart(w, r)
	case "", "application/json":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := json.NewDecoder(r.Body).Decode(jsonDst); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.InvalidInput("invalid request body: " + err.Error())
		}
		return &requestBody{}, nil
	default:
		return nil, apperrors.UnsupportedMediaType(mediaType)
	}
}

func (p uploadParser) parseMultipart(w http.ResponseWriter, r *http.Request) (*requestBody, error) {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(p.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.PayloadTooLarge(p.maxBytes)
		}
		return nil, apperrors.InvalidInput("failed to parse multipart form: " + err.Error())
	}

	image, err := p.readImage(r)
	if err != nil {
		return nil, err
	}
	return &requestBody{values: formValues(r.MultipartForm.Value), image: image}, nil
}

// readImage returns the optional image part. An empty part with no file name
// is what browsers send when no file was chosen and counts as absent.
func (p uploadParser) readImage(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.InvalidInput("read image: " + err.Error())
	}
	defer file.Close()

	if header.Size > p.maxBytes {
		return nil, apperrors.PayloadTooLarge(p.maxBytes)
	}
	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, p.maxBytes+1))
	if err != nil {
		return nil, apperrors.InvalidInput("read image: " + err.Error())
	}
	if int64(len(data)) > p.maxBytes {
		return nil, apperrors.PayloadTooLarge(p.maxBytes)
	}
	if len(data) == 0 {
		return nil, apperrors.InvalidInput("image is empty")
	}

	contentType, err := checkImageType(header.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}

	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// checkImageType requires both the declared and the detected content type to
// be on the allow-list. A missing or generic declared type is ignored. The
// detected type is returned.
func checkImageType(declared string, data []byte) (string, error) {
	if declared != "" {
		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil {
			return "", apperrors.UnsupportedMediaType(declared)
		}
		if mediaType != "application/octet-stream" && !domain.IsAllowedImageType(mediaType) {
			return "", apperrors.UnsupportedMediaType(mediaType)
		}
	}

	detected := mimetype.Detect(data)
	for _, allowed := range domain.AllowedImageTypes() {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", apperrors.UnsupportedMediaType(detected.String())
}

// formValues wraps multipart values. Blank values count as absent.
type formValues map[string][]string

func (f formValues) get(key string) (string, bool) {
	vs := f[key]
	if len(vs) == 0 {
		return "", false
	}
	v := strings.TrimSpace(vs[0])
	return v, v != ""
}

func (f formValues) str(key string) *string {
	v, ok := f.get(key)
	if !ok {
		return nil
	}
	return &v
}

func (f formValues) float(key string) (*float64, error) {
	v, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be a number", key))
	}
	return &n, nil
}

func (f formValues) int(key string) (*int, error) {
	v, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", key))
	}
	return &n, nil
}

// list accepts repeated fields and comma-separated values.
func (f formValues) list(key string) *[]string {
	vs, ok := f[key]
	if !ok {
		return nil
	}
	var out []string
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if out == nil {
		return nil
	}
	return &out
}

// time accepts RFC 3339 timestamps and plain dates.
func (f formValues) time(key string) (*time.Time, error) {
	v, ok := f.get(key)
	if !ok {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be a date or RFC 3339 timestamp", key))
}
