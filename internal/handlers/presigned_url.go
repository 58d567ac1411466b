package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"credit-risk-engine/internal/services/storage"
	"credit-risk-engine/internal/utils"
)

const uploadURLExpiry = 15 * time.Minute

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// AssetUploadHandler issues presigned S3 PUT URLs so field agents can upload
// business and home photos directly, then reference them in an assessment
// request by their s3:// path.
type AssetUploadHandler struct {
	store *storage.Service
}

// NewAssetUploadHandler creates a new asset upload handler.
func NewAssetUploadHandler(store *storage.Service) *AssetUploadHandler {
	return &AssetUploadHandler{store: store}
}

type assetUploadRequest struct {
	Filename  string `json:"filename"`
	AssetKind string `json:"asset_kind"`
}

type assetUploadResponse struct {
	UploadURL string `json:"upload_url"`
	AssetRef  string `json:"asset_ref"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

// PresignUpload handles POST /api/v1/assets/upload-url.
func (h *AssetUploadHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req assetUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		writeError(w, http.StatusBadRequest, "filename must be a .jpg, .jpeg, .png or .webp image")
		return
	}

	kind := req.AssetKind
	if kind != "business" && kind != "home" {
		writeError(w, http.StatusBadRequest, "asset_kind must be \"business\" or \"home\"")
		return
	}

	key := "assets/" + kind + "/" + time.Now().UTC().Format("2006/01/02") + "/" +
		uuid.New().String() + "_" + sanitizeFilename(req.Filename)

	uploadURL, err := h.store.PresignUpload(r.Context(), key, contentType, uploadURLExpiry)
	if err != nil {
		logger.Error("Failed to presign asset upload",
			zap.String("key", key),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	logger.Info("Issued asset upload URL",
		zap.String("key", key),
		zap.String("asset_kind", kind))

	writeJSON(w, http.StatusOK, assetUploadResponse{
		UploadURL: uploadURL,
		AssetRef:  h.store.Ref(key),
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	})
}

// sanitizeFilename strips path components and characters unsafe for object keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
