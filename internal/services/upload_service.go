package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"travelagency/internal/domain"
	"travelagency/internal/storage"
	"travelagency/internal/utils"
)

const UploadPrefix = "uploads/"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UploadService struct {
	Storage   storage.Storage
	MaxBytes  int64
	RequestID string
}

// Upload sniffs the content, rejects anything that is not an allowed image and
// streams it to object storage under uploads/YYYY/MM/.
func (s UploadService) Upload(ctx context.Context, declaredType string, r io.Reader) (storage.ObjectInfo, error) {
	if s.Storage == nil {
		return storage.ObjectInfo{}, domain.UnavailableError{Service: "storage"}
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return storage.ObjectInfo{}, domain.ValidationError{Field: "file", Msg: "cannot read upload", Err: err}
	}
	if int64(len(data)) > limit {
		return storage.ObjectInfo{}, domain.ValidationError{
			Field: "file", Msg: fmt.Sprintf("larger than %d bytes", limit), Code: "file_too_large",
		}
	}
	if len(data) == 0 {
		return storage.ObjectInfo{}, domain.ValidationError{Field: "file", Msg: "empty file"}
	}

	sniffed := mimetype.Detect(data).String()
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	ext, ok := allowedImageTypes[sniffed]
	if !ok {
		return storage.ObjectInfo{}, domain.ValidationError{Field: "file", Msg: "unsupported type " + sniffed, Code: "invalid_file_type"}
	}
	if declared := normalizeDeclaredType(declaredType); declared != "" && declared != sniffed {
		return storage.ObjectInfo{}, domain.ValidationError{
			Field: "file", Msg: fmt.Sprintf("declared %s but content is %s", declared, sniffed), Code: "invalid_file_type",
		}
	}

	now := utils.NowUTC()
	key := fmt.Sprintf("%s%04d/%02d/%s%s", UploadPrefix, now.Year(), int(now.Month()), uuid.NewString(), ext)
	info, err := s.Storage.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: sniffed,
	})
	if err != nil {
		utils.LogError(s.RequestID, "upload", "put", err)
		return storage.ObjectInfo{}, domain.InternalError{Msg: "upload failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "upload", "put", fmt.Sprintf("stored %s (%d bytes)", key, len(data)))
	return info, nil
}

func (s UploadService) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if !strings.HasPrefix(key, UploadPrefix) || strings.Contains(key, "..") {
		return domain.ValidationError{Field: "key", Msg: "invalid key"}
	}
	if s.Storage == nil {
		return domain.UnavailableError{Service: "storage"}
	}
	err := s.Storage.Delete(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFoundError{Resource: "upload", Err: err}
	}
	if err != nil {
		return domain.InternalError{Msg: "delete failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "upload", "delete", "deleted "+key)
	return nil
}

// normalizeDeclaredType returns "" when the client did not declare anything useful.
func normalizeDeclaredType(v string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(v))
	if err != nil {
		return ""
	}
	mt = strings.ToLower(mt)
	switch mt {
	case "application/octet-stream":
		return ""
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	}
	return mt
}
