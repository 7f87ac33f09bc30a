package users

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/middleware"
	"geniustrading/services"
	"geniustrading/utils"

	"github.com/google/uuid"
)

const maxDocumentBytes = 5 << 20

var documentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type SubmitKycRequest struct {
	DocumentType   string `json:"documentType" validate:"max=32"`
	DocumentNumber string `json:"documentNumber" validate:"max=64"`
	FullName       string `json:"fullName" validate:"max=150"`
	DateOfBirth    string `json:"dateOfBirth" validate:"max=32"`
	Nationality    string `json:"nationality" validate:"max=64"`
	Address        string `json:"address" validate:"max=1000"`
	PhoneNumber    string `json:"phoneNumber" validate:"max=32"`
	DocumentKey    string `json:"documentKey" validate:"max=255"`
}

func documentPrefix(userID uint) string {
	return fmt.Sprintf("kyc/%d/", userID)
}

// POST /api/kyc
func (h *Handler) SubmitKyc(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	var req SubmitKycRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	key := strings.TrimSpace(req.DocumentKey)
	if key != "" && !strings.HasPrefix(key, documentPrefix(uid)) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid documentKey"})
		return
	}

	rec, err := h.kyc.Submit(r.Context(), uid, services.KycInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		Nationality:    req.Nationality,
		Address:        req.Address,
		PhoneNumber:    req.PhoneNumber,
		DocumentKey:    key,
	})
	if err != nil {
		utils.WriteError(w, logger.For("kyc"), err)
		return
	}
	utils.WriteOK(w, http.StatusCreated, "KYC submitted", rec)
}

// GET /api/kyc returns the latest submission or null.
func (h *Handler) GetKyc(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserID(r)
	rec, err := h.kyc.Latest(r.Context(), uid)
	if err != nil {
		utils.WriteError(w, logger.For("kyc"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", rec)
}

// POST /api/kyc/document (multipart, field "document")
func (h *Handler) UploadKycDocument(w http.ResponseWriter, r *http.Request) {
	if h.docs == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Document upload is not available"})
		return
	}
	uid, _ := utils.GetUserID(r)
	log := logger.For("kyc")

	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid form data"})
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "document is required"})
		return
	}
	defer file.Close()
	if header.Size <= 0 || header.Size > maxDocumentBytes {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "document must be at most 5 MB"})
		return
	}

	// sniff the content instead of trusting the client's header
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid document"})
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := documentTypes[contentType]
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "document must be a JPEG, PNG or PDF file"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		utils.WriteError(w, log, err)
		return
	}

	key := documentPrefix(uid) + uuid.NewString() + ext
	if err := h.docs.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		utils.WriteError(w, log, err)
		return
	}
	log.Info().Uint("user_id", uid).Str("key", key).Msg("kyc document uploaded")
	utils.WriteOK(w, http.StatusCreated, "Document uploaded", map[string]string{"documentKey": key})
}
