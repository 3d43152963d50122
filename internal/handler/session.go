package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
	"github.com/pavelanni/mockinterview/internal/resume"
)

// uploadLimit bounds the whole multipart body. The file itself is checked
// against resume.MaxSize by the controller.
const uploadLimit = resume.MaxSize + 1<<20

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

type eventsResponse struct {
	Events []EventEntry `json:"events"`
	Last   uint64       `json:"last"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid since parameter", Message: appI18n.T(r.Context(), "ErrInternal")})
			return
		}
		since = n
	}

	entries, last := h.events.Since(since)
	for i := range entries {
		if id := entries[i].MessageID; id != "" {
			entries[i].Message = appI18n.Td(r.Context(), id, entries[i].Data)
		}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: entries, Last: last})
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.ctrl.Begin())
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadLimit)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, r, &resume.ValidationError{Code: resume.CodeTooLarge, Detail: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid multipart form: " + err.Error(), Message: appI18n.T(r.Context(), "ErrInvalidFileType")})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no file uploaded", Message: appI18n.T(r.Context(), "ErrInvalidFileType")})
		return
	}
	defer file.Close()

	doc, err := resume.Read(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc.Size = max(doc.Size, header.Size)

	h.command(w, r, h.ctrl.Upload(r.Context(), doc))
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	value, err := readField(r, "value")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Message: appI18n.T(r.Context(), "ErrEmptyValue")})
		return
	}
	h.command(w, r, h.ctrl.SubmitInfo(value))
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	text, err := readField(r, "text")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Message: appI18n.T(r.Context(), "ErrEmptyAnswer")})
		return
	}
	h.command(w, r, h.ctrl.UpdateDraft(text))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	text, err := readField(r, "text")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Message: appI18n.T(r.Context(), "ErrEmptyAnswer")})
		return
	}
	h.command(w, r, h.ctrl.SubmitAnswer(text))
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.ctrl.Resume())
}

func (h *Handler) handleStartNew(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.ctrl.StartNew())
}

// command answers a session command with the resulting state, or the error.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

// readField reads a string field from a JSON object body or a form.
func readField(r *http.Request, name string) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		return r.FormValue(name), nil
	}
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode request body: %w", err)
	}
	return body[name], nil
}
