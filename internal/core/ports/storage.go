package ports

import "context"

// ProfileImageStore normalises an uploaded image, stores it and returns its public URL.
type ProfileImageStore interface {
	StoreProfileImage(ctx context.Context, userID string, data []byte) (string, error)
}
