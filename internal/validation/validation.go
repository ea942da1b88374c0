package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxGroupSize caps the group size an administrator may request
const MaxGroupSize = 100

var (
	ErrFileTooLarge     = errors.New("file exceeds the upload limit")
	ErrFileTypeDenied   = errors.New("file type not allowed")
	ErrInvalidGroupSize = errors.New("group size out of range")
)

// ImageTypes are the content types accepted for gallery uploads
var ImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateRequired checks that a field is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string in runes
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ParseUUID parses value as a UUID, naming fieldName in the error
func ParseUUID(value, fieldName string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, errors.New(fieldName + " must be a valid UUID")
	}
	return id, nil
}

// ValidateGroupSize checks an explicitly requested group size
func ValidateGroupSize(size int) error {
	if size < 1 || size > MaxGroupSize {
		return fmt.Errorf("%w: group_size must be between 1 and %d", ErrInvalidGroupSize, MaxGroupSize)
	}
	return nil
}

// ValidateImageUpload checks size and content type of an uploaded image and
// returns the content type with the file extension to store it under
func ValidateImageUpload(header *multipart.FileHeader, maxSize int64) (string, string, error) {
	if maxSize > 0 && header.Size > maxSize {
		return "", "", fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, header.Size, maxSize)
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := ImageTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrFileTypeDenied, contentType)
	}
	if orig := strings.ToLower(filepath.Ext(header.Filename)); orig != "" {
		if orig == ".jpeg" && ext == ".jpg" {
			return contentType, ext, nil
		}
		if orig != ext {
			return "", "", fmt.Errorf("%w: extension %s does not match %s", ErrFileTypeDenied, orig, contentType)
		}
	}
	return contentType, ext, nil
}
