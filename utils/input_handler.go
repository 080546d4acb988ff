package utils

import (
	"errors"
	"strings"

	"github.com/quizmeai/quizme-backend/models"
)

// ResourceKindFromExt maps a file extension onto the resource kind enum.
func ResourceKindFromExt(ext string) (models.ResourceKind, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf", "docx", "txt", "md":
		return models.ResourceDocument, nil
	case "png", "jpg", "jpeg", "gif", "webp":
		return models.ResourceImage, nil
	default:
		return "", errors.New("unsupported file extension: " + ext)
	}
}
