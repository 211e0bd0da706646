package domain

// DefaultMaxUploadBytes is the default image size ceiling (5 MiB).
const DefaultMaxUploadBytes int64 = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// AllowedImageTypes lists the accepted upload content types.
func AllowedImageTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif"}
}

// IsAllowedImageType checks a content type against the allow-list.
func IsAllowedImageType(contentType string) bool {
	return allowedImageTypes[contentType]
}

// ImageUpload is an image payload that already passed size and type checks.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
