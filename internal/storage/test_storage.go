package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// TestStorage keeps objects in memory. Used by handler and router tests.
type TestStorage struct {
	mutex        sync.Mutex
	bucket       string
	serviceURL   string
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
	DeleteErr    error
	HealthErr    error
}

func NewTestStorage(serviceURL, bucket string) *TestStorage {
	return &TestStorage{
		bucket:       bucket,
		serviceURL:   serviceURL,
		Objects:      map[string][]byte{},
		ContentTypes: map[string]string{},
	}
}

func (s *TestStorage) Bucket() string {
	return s.bucket
}

func (s *TestStorage) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Objects[key] = data
	s.ContentTypes[key] = contentType
	return s.PublicURL(key), nil
}

func (s *TestStorage) Delete(_ context.Context, key string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *TestStorage) HealthCheck(context.Context) error {
	return s.HealthErr
}

func (s *TestStorage) PublicURL(key string) string {
	return newS3Storage(nil, s.bucket, s.serviceURL).PublicURL(key)
}

func (s *TestStorage) KeyFromURL(url string) (string, bool) {
	return newS3Storage(nil, s.bucket, s.serviceURL).KeyFromURL(url)
}

func (s *TestStorage) Has(key string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.Objects[key]
	return ok
}

func (s *TestStorage) Count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.Objects)
}
