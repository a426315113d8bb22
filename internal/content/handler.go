package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/cache"
	"github.com/fcacademy/academyweb/internal/storage"
	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=content_test

const (
	DefaultMaxUploadBytes = 10 << 20
	maxJSONBodyBytes      = 1 << 20
	// form key used by the admin UI for every resource; the file field name works too
	uploadFormKey = "image"
)

type recordsRepo interface {
	List(ctx context.Context, schema Schema, limit, offset int) ([]Record, error)
	Get(ctx context.Context, schema Schema, id int) (Record, error)
	Create(ctx context.Context, schema Schema, values map[string]any) (Record, error)
	Update(ctx context.Context, schema Schema, id int, values map[string]any) (Record, error)
	Delete(ctx context.Context, schema Schema, id int) (Record, error)
}

type objectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type HandlerOptions struct {
	MaxUploadBytes int64
	ExposeErrors   bool
	Now            func() time.Time
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

type Handler struct {
	schemas        []Schema
	repo           recordsRepo
	storage        objectStorage
	listCache      cache.ListCache
	metricsManager *metrics.Manager
	opts           HandlerOptions
}

func NewHandler(
	schemas []Schema,
	repo recordsRepo,
	storage objectStorage,
	listCache cache.ListCache,
	metricsManager *metrics.Manager,
	opts HandlerOptions,
) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if listCache == nil {
		listCache = cache.NopListCache{}
	}
	return &Handler{
		schemas:        schemas,
		repo:           repo,
		storage:        storage,
		listCache:      listCache,
		metricsManager: metricsManager,
		opts:           opts,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	for _, schema := range h.schemas {
		base := "/api/admin/" + schema.Resource
		router.HandleFunc(base, h.handleList(schema)).Methods("GET").Name("list-" + schema.Resource)
		router.HandleFunc(base, h.handleCreate(schema)).Methods("POST", "OPTIONS").Name("create-" + schema.Resource)
		router.HandleFunc(base+"/{id}", h.handleGet(schema)).Methods("GET").Name("get-" + schema.Resource)
		router.HandleFunc(base+"/{id}", h.handleUpdate(schema)).Methods("PUT", "OPTIONS").Name("update-" + schema.Resource)
		router.HandleFunc(base+"/{id}", h.handleDelete(schema)).Methods("DELETE").Name("delete-" + schema.Resource)
	}
}

func (h *Handler) handleList(schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.list")
		defer span.End()
		span.SetAttributes(attribute.String("resource", schema.Resource))

		limit, err := nonNegativeQueryInt(r, "limit")
		if err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := nonNegativeQueryInt(r, "offset")
		if err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		variant := fmt.Sprintf("limit=%d&offset=%d", limit, offset)
		// the version is taken before the query so a write landing meanwhile voids the Set below
		cached, cacheVersion, ok := h.listCache.Get(ctx, schema.Resource, variant)
		if ok {
			h.countCacheLookup(schema, "hit")
			pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
			return
		}
		h.countCacheLookup(schema, "miss")

		records, err := h.repo.List(ctx, schema, limit, offset)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			log.Errorf("list %s: %s", schema.Resource, err)
			pkg.WriteInternalError(w, "failed to list "+schema.Resource, err, h.opts.ExposeErrors)
			return
		}
		if records == nil {
			records = []Record{}
		}

		respBytes, err := json.Marshal(records)
		if err != nil {
			log.Errorf("marshal %s list: %s", schema.Resource, err)
			pkg.WriteInternalError(w, "failed to list "+schema.Resource, err, h.opts.ExposeErrors)
			return
		}

		h.listCache.Set(ctx, schema.Resource, variant, cacheVersion, respBytes)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
	}
}

func (h *Handler) handleGet(schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.get")
		defer span.End()

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		rec, err := h.repo.Get(ctx, schema, id)
		if err != nil {
			h.writeRepoError(w, schema, "get", err)
			return
		}

		pkg.WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) handleCreate(schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.create")
		defer span.End()
		span.SetAttributes(attribute.String("resource", schema.Resource))

		in, ok := h.readInput(w, r, schema)
		if !ok {
			return
		}
		defer in.close()

		values, err := schema.ParseValues(in.raw, false)
		if err != nil {
			writeValidationError(w, err)
			return
		}

		uploadedKey, ok := h.uploadFile(ctx, w, schema, in.file, values)
		if !ok {
			return
		}

		rec, err := h.repo.Create(ctx, schema, values)
		if err != nil {
			h.removeObject(ctx, uploadedKey)
			h.writeRepoError(w, schema, "create", err)
			return
		}

		h.listCache.Invalidate(ctx, schema.Resource)
		log.Tracef("new %s %d created", schema.Resource, rec.ID())
		pkg.WriteJSON(w, http.StatusCreated, rec)
	}
}

func (h *Handler) handleUpdate(schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.update")
		defer span.End()
		span.SetAttributes(attribute.String("resource", schema.Resource))

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		in, ok := h.readInput(w, r, schema)
		if !ok {
			return
		}
		defer in.close()

		values, err := schema.ParseValues(in.raw, true)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if len(values) == 0 && in.file == nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, "no fields to update")
			return
		}

		// the current file url is needed when the file gets replaced
		var previousURL string
		if _, replacesFile := values[schema.FileField]; in.file != nil || (schema.FileField != "" && replacesFile) {
			current, err := h.repo.Get(ctx, schema, id)
			if err != nil {
				h.writeRepoError(w, schema, "update", err)
				return
			}
			previousURL = current.String(schema.FileField)
		}

		uploadedKey, ok := h.uploadFile(ctx, w, schema, in.file, values)
		if !ok {
			return
		}

		rec, err := h.repo.Update(ctx, schema, id, values)
		if err != nil {
			h.removeObject(ctx, uploadedKey)
			h.writeRepoError(w, schema, "update", err)
			return
		}

		if previousURL != "" && previousURL != rec.String(schema.FileField) {
			if key, ours := h.storage.KeyFromURL(previousURL); ours {
				h.removeObject(ctx, key)
			}
		}

		h.listCache.Invalidate(ctx, schema.Resource)
		pkg.WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) handleDelete(schema Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "contentHandler.delete")
		defer span.End()
		span.SetAttributes(attribute.String("resource", schema.Resource))

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		rec, err := h.repo.Delete(ctx, schema, id)
		if err != nil {
			h.writeRepoError(w, schema, "delete", err)
			return
		}

		if key, ours := h.storage.KeyFromURL(rec.String(schema.FileField)); ours {
			h.removeObject(ctx, key)
		}

		h.listCache.Invalidate(ctx, schema.Resource)
		log.Tracef("%s %d deleted", schema.Resource, id)
		pkg.WriteJSON(w, http.StatusOK, DeleteResponse{
			Message: "deleted",
			ID:      id,
		})
	}
}

type uploadedFile struct {
	file   multipart.File
	header *multipart.FileHeader
}

type input struct {
	raw  map[string]any
	file *uploadedFile
	form *multipart.Form
}

func (in *input) close() {
	if in.file != nil {
		if err := in.file.file.Close(); err != nil {
			log.Warnf("close uploaded file: %s", err)
		}
	}
	if in.form != nil {
		if err := in.form.RemoveAll(); err != nil {
			log.Warnf("remove multipart temp files: %s", err)
		}
	}
}

// readInput decodes a JSON, multipart or url-encoded body. On failure the error
// response is already written.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request, schema Schema) (*input, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		// room for the other form fields on top of the file
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+maxJSONBodyBytes)
		if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.writeTooLarge(w)
				return nil, false
			}
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid multipart form")
			return nil, false
		}

		in := &input{
			raw:  firstValues(r.MultipartForm.Value),
			form: r.MultipartForm,
		}
		for _, key := range []string{uploadFormKey, schema.FileField} {
			if key == "" {
				continue
			}
			file, header, err := r.FormFile(key)
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			if err != nil {
				in.close()
				pkg.WriteJSONError(w, http.StatusBadRequest, "invalid file upload")
				return nil, false
			}
			in.file = &uploadedFile{file: file, header: header}
			break
		}

		if in.file != nil && in.file.header.Size > h.opts.MaxUploadBytes {
			in.close()
			h.writeTooLarge(w)
			return nil, false
		}
		return in, true

	case "application/json":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()
		raw := map[string]any{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				pkg.WriteJSONError(
					w,
					http.StatusRequestEntityTooLarge,
					fmt.Sprintf("JSON body exceeds %d bytes", maxBytesErr.Limit),
				)
				return nil, false
			}
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return nil, false
		}
		return &input{raw: raw}, true

	default:
		if err := r.ParseForm(); err != nil {
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid form body")
			return nil, false
		}
		return &input{raw: firstValues(r.PostForm)}, true
	}
}

// uploadFile stores the file (if any) and puts its public url into values.
// Returns the object key so a failed insert can remove the object again.
func (h *Handler) uploadFile(
	ctx context.Context,
	w http.ResponseWriter,
	schema Schema,
	upload *uploadedFile,
	values map[string]any,
) (string, bool) {
	if upload == nil {
		return "", true
	}
	if schema.FileField == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, schema.Resource+" does not accept files")
		return "", false
	}

	contentType, err := sniffContentType(upload)
	if err != nil {
		log.Errorf("read uploaded file: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid file upload")
		return "", false
	}
	if !AllowedContentType(contentType) {
		pkg.WriteJSONError(w, http.StatusUnsupportedMediaType, "file must be an image or a PDF")
		return "", false
	}
	if declared := upload.header.Header.Get("Content-Type"); !declaredTypeMatches(declared, contentType) {
		log.Debugf("%s upload declared as %s, sniffed %s", schema.Resource, declared, contentType)
		pkg.WriteJSONError(w, http.StatusUnsupportedMediaType, "file content does not match its declared type")
		return "", false
	}

	key := storage.ObjectKey(schema.Resource, upload.header.Filename, h.opts.Now())
	url, err := h.storage.Upload(ctx, key, contentType, upload.file, upload.header.Size)
	if err != nil {
		h.countUpload(schema, "error")
		log.Errorf("upload %s file: %s", schema.Resource, err)
		pkg.WriteInternalError(w, "file upload failed", err, h.opts.ExposeErrors)
		return "", false
	}
	h.countUpload(schema, "success")

	values[schema.FileField] = url
	return key, true
}

func (h *Handler) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.storage.Delete(ctx, key); err != nil {
		log.Warnf("remove stored object %s: %s", key, err)
	}
}

func (h *Handler) writeRepoError(w http.ResponseWriter, schema Schema, op string, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "not found")
	case pkg.IsNotNullViolationError(err), pkg.IsInvalidInputError(err):
		log.Debugf("%s %s rejected by db: %s", op, schema.Resource, err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid "+schema.Resource+" data")
	default:
		log.Errorf("%s %s: %s", op, schema.Resource, err)
		pkg.WriteInternalError(w, op+" "+schema.Resource+" failed", err, h.opts.ExposeErrors)
	}
}

func (h *Handler) writeTooLarge(w http.ResponseWriter) {
	pkg.WriteJSONError(
		w,
		http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file exceeds the %d MB upload limit", h.opts.MaxUploadBytes>>20),
	)
}

func (h *Handler) countCacheLookup(schema Schema, result string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterCacheLookups.WithLabelValues(schema.Resource, result).Inc()
	}
}

func (h *Handler) countUpload(schema Schema, result string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterUploads.WithLabelValues(schema.Resource, result).Inc()
	}
}

// AllowedContentType accepts raster images and PDFs. SVG is refused since it can carry script.
func AllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// sniffContentType detects the type from the first bytes of the upload and rewinds it.
func sniffContentType(upload *uploadedFile) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(upload.file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := upload.file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

var mediaTypeAliases = map[string]string{
	"image/jpg":                "image/jpeg",
	"image/pjpeg":              "image/jpeg",
	"image/vnd.microsoft.icon": "image/x-icon",
}

// declaredTypeMatches reports whether the part header agrees with the sniffed type.
// A missing or generic header defers to the sniffed type.
func declaredTypeMatches(declared, sniffed string) bool {
	if declared == "" || declared == "application/octet-stream" {
		return true
	}
	declaredType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	if alias, ok := mediaTypeAliases[declaredType]; ok {
		declaredType = alias
	}
	sniffedType, _, _ := mime.ParseMediaType(sniffed)
	return declaredType == sniffedType
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func nonNegativeQueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		pkg.WriteJSONError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
}

func firstValues(form map[string][]string) map[string]any {
	raw := make(map[string]any, len(form))
	for key, values := range form {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}
	return raw
}
