package ports

import "context"

// Messenger is the boundary to the notification channel. Captions are
// HTML-formatted; the channel target (chat and sub-thread) is fixed at
// construction time.
type Messenger interface {
	// SendPhotoURL delivers a caption with a remotely hosted image.
	SendPhotoURL(ctx context.Context, caption, photoURL string) error
	// SendPhotoUpload delivers a caption with raw image bytes, used as the
	// fallback when URL-mode delivery fails.
	SendPhotoUpload(ctx context.Context, caption, filename string, photo []byte) error
}
