package uploads

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultExt is substituted when the uploaded filename carries no
// extension; a missing extension never fails the upload.
const defaultExt = "pdf"

// BuildPath maps an upload to its storage key:
//
//	{scope}/{scopeOrOwnerID}/{unixmilli}_{token}.{ext}
//
// The random token keeps concurrent uploads of the same filename from
// colliding and makes object keys non-enumerable even inside an
// authorized scope directory. The original filename is kept on the
// record for Content-Disposition; it never reaches the key.
func BuildPath(scope models.Scope, scopeOrOwnerID primitive.ObjectID, fileName string, now time.Time) string {
	token := uuid.New().String()[:8]
	return fmt.Sprintf("%s/%s/%d_%s.%s",
		scope, scopeOrOwnerID.Hex(), now.UnixMilli(), token, extensionOf(fileName))
}

// extensionOf extracts a lower-cased extension from the original
// filename, substituting the default when there is none.
func extensionOf(fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(fileName)), ".")
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return defaultExt
	}
	return ext
}

// AvatarPath maps a profile picture to its storage key, outside the
// scope directories:
//
//	avatars/{userID}/{unixmilli}_{token}.{ext}
//
// Avatars are not scoped resources; they belong to exactly one
// profile and are always world-readable once set.
func AvatarPath(userID primitive.ObjectID, fileName string, now time.Time) string {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(fileName)), ".")
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		ext = "png"
	}
	token := uuid.New().String()[:8]
	return fmt.Sprintf("avatars/%s/%d_%s.%s", userID.Hex(), now.UnixMilli(), token, ext)
}

// SanitizeFilename reduces an uploaded filename to a safe form for
// Content-Disposition headers and display.
func SanitizeFilename(fileName string) string {
	fileName = filepath.Base(fileName)

	result := make([]byte, 0, len(fileName))
	for i := 0; i < len(fileName); i++ {
		c := fileName[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
