package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appdelivery "github.com/clientdesk/backend/internal/application/delivery"
	"go.uber.org/zap"
)

// Ensure StubArtifactStorage implements ArtifactStorage
var _ appdelivery.ArtifactStorage = (*StubArtifactStorage)(nil)

// StubArtifactStorage is an in-memory storage backend for local development
// and testing. Objects live in a map and download URLs are deterministic
// fakes that encode the key and expiry.
type StubArtifactStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
	logger  *zap.Logger
}

// NewStubArtifactStorage creates a new in-memory artifact storage
func NewStubArtifactStorage(logger *zap.Logger) *StubArtifactStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubArtifactStorage{
		objects: make(map[string][]byte),
		baseURL: "https://storage.example.com",
		logger:  logger,
	}
}

// Upload stores data under storageKey
func (s *StubArtifactStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = buf

	s.logger.Debug("Stored object in stub storage",
		zap.String("key", storageKey),
		zap.Int("size", len(data)))
	return nil
}

// GenerateDownloadURL returns a fake download URL for the given key
func (s *StubArtifactStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}

	expiresAt := time.Now().Add(expiresIn)
	url := fmt.Sprintf("%s/download/%s?expires=%s",
		s.baseURL, storageKey, expiresAt.Format(time.RFC3339))
	return url, expiresAt, nil
}

// DeleteObject removes an object from the stub storage
func (s *StubArtifactStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether an object is present in the stub storage
func (s *StubArtifactStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// GetObject returns the stored bytes for a key. Test helper.
func (s *StubArtifactStorage) GetObject(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
