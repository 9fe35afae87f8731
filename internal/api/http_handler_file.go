package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hardware-catalog-service/internal/auth"
	"hardware-catalog-service/internal/domain"
	"hardware-catalog-service/internal/store"
)

// maxUploadBytes caps a single file upload at 32 MiB.
const maxUploadBytes = 32 << 20

// UploadFile handles POST /api/v1/files with a multipart "file" field.
// Re-uploading identical content returns the already stored file.
func (h *HTTPHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	upload := &domain.File{
		FileName:     header.Filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		SizeBytes:    int64(len(data)),
		Data:         data,
		CreatedBy:    auth.CallerID(r.Context()),
	}

	saved, err := h.fileStore.SaveFile(r.Context(), upload)
	if err != nil {
		log.Printf("ERROR: UploadFile store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	respondWithJSON(w, http.StatusCreated, saved)
}

func (h *HTTPHandler) GetFileByID(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID format")
		return
	}

	file, err := h.fileStore.GetFileByID(r.Context(), fileID)
	if err != nil {
		log.Printf("ERROR: GetFileByID store operation for ID %s failed: %v", fileID, err)
		if errors.Is(err, store.ErrFileNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrFileNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve file")
		}
		return
	}

	// Metadata only; Data is excluded by its json tag.
	respondWithJSON(w, http.StatusOK, file)
}

// DownloadFile streams the stored bytes with the original content type.
func (h *HTTPHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID format")
		return
	}

	file, err := h.fileStore.GetFileByID(r.Context(), fileID)
	if err != nil {
		log.Printf("ERROR: DownloadFile store operation for ID %s failed: %v", fileID, err)
		if errors.Is(err, store.ErrFileNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrFileNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve file")
		}
		return
	}

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.OriginalName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		log.Printf("ERROR: DownloadFile failed to write response for ID %s: %v", fileID, err)
	}
}

func (h *HTTPHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID format")
		return
	}

	err = h.fileStore.DeleteFile(r.Context(), fileID)
	if err != nil {
		log.Printf("ERROR: DeleteFile store operation for ID %s failed: %v", fileID, err)
		if errors.Is(err, store.ErrFileNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrFileNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete file")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
