//go:build integration_test || all_tests

package test

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

const s3Prefix = "/storage/v1/s3/"

// fakeObjectStore answers the few S3 calls the server makes, path-style,
// under the storage service S3 endpoint. Object bodies are not kept.
type fakeObjectStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]string
}

func newFakeObjectStore(bucket string) *fakeObjectStore {
	return &fakeObjectStore{
		bucket:  bucket,
		objects: make(map[string]string),
	}
}

func (f *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, found := strings.CutPrefix(r.URL.Path, s3Prefix)
	if !found {
		http.NotFound(w, r)
		return
	}
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodHead && key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && key != "":
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"fake-etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete && key != "":
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeObjectStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeObjectStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
