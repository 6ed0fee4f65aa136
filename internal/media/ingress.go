package media

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/models"
)

// ValidateUpload checks an incoming payload against its declared kind
// before any decode is attempted. The declared kind must be supported and
// must agree with the sniffed content type; mismatches are client errors.
func ValidateUpload(upload models.MediaUpload) error {
	switch upload.Kind {
	case models.MediaImage, models.MediaVideo, models.MediaAudio:
	default:
		return errs.Validation("unsupported media kind %q", upload.Kind)
	}

	if len(upload.Data) == 0 {
		return errs.Validation("empty media payload (filename %q)", upload.Filename)
	}

	detected := mimetype.Detect(upload.Data)
	if !kindMatches(upload.Kind, detected.String()) {
		return errs.Validation("declared kind %q does not match detected content type %q",
			upload.Kind, detected.String())
	}
	return nil
}

func kindMatches(kind models.MediaKind, mime string) bool {
	switch kind {
	case models.MediaImage:
		return strings.HasPrefix(mime, "image/")
	case models.MediaVideo:
		return strings.HasPrefix(mime, "video/")
	case models.MediaAudio:
		// WAV sniffs as audio/wav but some encoders produce
		// audio/x-wav or audio/vnd.wave.
		return strings.HasPrefix(mime, "audio/")
	default:
		return false
	}
}
