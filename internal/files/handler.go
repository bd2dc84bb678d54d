package files

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

// Handler exposes upload and download endpoints for the file store.
type Handler struct {
	logger    *slog.Logger
	store     *Store
	maxUpload int64
}

func NewHandler(logger *slog.Logger, store *Store, maxUpload int64) *Handler {
	return &Handler{logger: logger, store: store, maxUpload: maxUpload}
}

// MountUpload registers the authenticated upload route.
func (h *Handler) MountUpload(r chi.Router) {
	r.Post("/", h.handleUpload)
}

// MountDownload registers the public download route.
func (h *Handler) MountDownload(r chi.Router) {
	r.Get("/{name}", h.handleDownload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "file field is required")
		return
	}
	defer file.Close()

	name, err := h.store.Save(file, header.Filename)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("file uploaded", slog.String("file", name))
	httpx.JSON(w, http.StatusCreated, map[string]string{
		"filename": name,
		"url":      "/files/" + name,
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := h.store.Open(chi.URLParam(r, "name"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
