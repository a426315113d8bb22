//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcacademy/academyweb/pkg/client"
)

// a 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (s *IntegrationTestSuite) objectKey(publicURL string) string {
	prefix := s.storageSrv.URL + "/storage/v1/object/public/" + testBucket + "/"
	key, found := strings.CutPrefix(publicURL, prefix)
	s.Require().True(found, "unexpected public url: %s", publicURL)
	return key
}

func (s *IntegrationTestSuite) TestContent_CRUD() {
	t := s.T()
	ctx := context.Background()
	s.truncate(ctx, "news")
	sess := s.doLogin(ctx)

	news, err := s.apiClient.List(ctx, "news", client.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, news)

	created, err := s.apiClient.Create(ctx, sess, "news", map[string]any{
		"title":        "Spring camp",
		"content":      "Registrations are open for all age groups",
		"published_at": "2026-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.ID())
	assert.Equal(t, "Spring camp", created["title"])
	assert.Nil(t, created["summary"])

	// the cached empty list must be gone after the create
	news, err = s.apiClient.List(ctx, "news", client.ListOptions{})
	require.NoError(t, err)
	require.Len(t, news, 1)

	updated, err := s.apiClient.Update(ctx, sess, "news", created.ID(), map[string]any{
		"summary": "Camp starts in March",
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring camp", updated["title"])
	assert.Equal(t, "Camp starts in March", updated["summary"])

	got, err := s.apiClient.Get(ctx, "news", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "Camp starts in March", got["summary"])

	_, err = s.apiClient.Create(ctx, sess, "news", map[string]any{"content": "no title"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	require.NoError(t, s.apiClient.Delete(ctx, sess, "news", created.ID()))

	_, err = s.apiClient.Get(ctx, "news", created.ID())
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	news, err = s.apiClient.List(ctx, "news", client.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, news)
}

func (s *IntegrationTestSuite) TestContent_WritesRequireToken() {
	t := s.T()
	ctx := context.Background()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		path := "/api/admin/coaches"
		if method != http.MethodPost {
			path += "/1"
		}
		resp, err := s.httpClient.Do(s.newRequest(ctx, method, path, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, method)
		require.NoError(t, resp.Body.Close())
	}

	resp, err := s.httpClient.Do(s.newRequest(ctx, http.MethodGet, "/api/admin/coaches", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func (s *IntegrationTestSuite) TestContent_FileLifecycle() {
	t := s.T()
	ctx := context.Background()
	s.truncate(ctx, "coaches")
	sess := s.doLogin(ctx)

	created, err := s.apiClient.CreateWithFile(ctx, sess, "coaches",
		map[string]string{"name": "Ana Petrovic", "role": "U10 head coach", "years_experience": "7"},
		client.File{Name: "ana.png", ContentType: "image/png", Body: bytes.NewReader(pngPixel)},
	)
	require.NoError(t, err)
	assert.Equal(t, float64(7), created["years_experience"])

	imageURL, ok := created["image_url"].(string)
	require.True(t, ok)
	firstKey := s.objectKey(imageURL)
	assert.True(t, s.objects.has(firstKey))

	updated, err := s.apiClient.UpdateWithFile(ctx, sess, "coaches", created.ID(),
		map[string]string{"role": "Academy director"},
		client.File{Name: "ana-2.png", ContentType: "image/png", Body: bytes.NewReader(pngPixel)},
	)
	require.NoError(t, err)
	assert.Equal(t, "Academy director", updated["role"])

	secondKey := s.objectKey(updated["image_url"].(string))
	assert.NotEqual(t, firstKey, secondKey)
	assert.False(t, s.objects.has(firstKey), "replaced file must be removed")
	assert.True(t, s.objects.has(secondKey))

	_, err = s.apiClient.CreateWithFile(ctx, sess, "coaches",
		map[string]string{"name": "Bad", "role": "Upload"},
		client.File{Name: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("plain text")},
	)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnsupportedMediaType, apiErr.Status)

	require.NoError(t, s.apiClient.Delete(ctx, sess, "coaches", created.ID()))
	assert.False(t, s.objects.has(secondKey), "file of a deleted record must be removed")
	assert.Zero(t, s.objects.count())
}
