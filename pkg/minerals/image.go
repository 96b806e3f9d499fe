package minerals

import (
	"path/filepath"
	"strings"

	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
)

// unsupportedImageMessage is returned to the operator for unknown image types.
const unsupportedImageMessage = "unsupported image type; use png, jpg, webp, or gif"

// DetectImageExt picks the stored image extension from the uploaded file name,
// falling back to the declared content type. jpeg is normalized to jpg.
func DetectImageExt(fileName, contentType string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if normalized, ok := normalizeExt(ext); ok {
		return normalized, nil
	}

	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case "image/png":
		return "png", nil
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/webp":
		return "webp", nil
	case "image/gif":
		return "gif", nil
	}
	return "", errors.NewValidationError("image", fileName, unsupportedImageMessage)
}

func normalizeExt(ext string) (string, bool) {
	switch ext {
	case "png", "jpg", "webp", "gif":
		return ext, true
	case "jpeg":
		return "jpg", true
	}
	return "", false
}

// ContentTypeForExt returns the media type for a stored image extension.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// ImageFileName returns the stored image file name for an extension.
func ImageFileName(ext string) string {
	return constants.ImageBaseName + "." + ext
}
