//go:build integration_test || all_tests

package test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcacademy/academyweb/pkg/client"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		username       string
		password       string
		expectedStatus int
		expectedError  string
	}{
		"bad password": {
			username:       testUsername,
			password:       "bad-password",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid username or password",
		},
		"unknown username": {
			username:       "bad-username",
			password:       testPassword,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid username or password",
		},
		"missing password": {
			username:       testUsername,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "username and password are required",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			_, err := s.apiClient.Login(ctx, tc.username, tc.password)
			var apiErr *client.APIError
			require.True(t, errors.As(err, &apiErr), "err: %v", err)
			assert.Equal(t, tc.expectedStatus, apiErr.Status)
			assert.Equal(t, tc.expectedError, apiErr.Message)
		})
	}

	t.Run("good creds, then verify", func(t *testing.T) {
		sess, err := s.apiClient.Login(ctx, testUsername, testPassword)
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

		username, err := s.apiClient.Verify(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, testUsername, username)
	})

	t.Run("verify with a forged token", func(t *testing.T) {
		_, err := s.apiClient.Verify(ctx, client.Session{Token: "not.a.token"})
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Invalid or expired token", apiErr.Message)
	})
}

func (s *IntegrationTestSuite) TestLogin_RateLimiting() {
	t := s.T()
	ctx := context.Background()

	// simulate a brute force attack from one address
	for i := 1; i <= testLoginsPerMinute+5; i++ {
		_, err := s.apiClient.Login(ctx, testUsername, "wrong-password")
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr), "iteration: %d", i)

		if i <= testLoginsPerMinute {
			assert.Equal(t, http.StatusUnauthorized, apiErr.Status, "iteration: %d", i)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, apiErr.Status, "iteration: %d", i)
		}
	}

	req := s.newRequest(ctx, http.MethodPost, "/api/admin/login", "")
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retryAfter)

	// the limit only applies to login
	_, err = s.apiClient.List(ctx, "news", client.ListOptions{})
	assert.NoError(t, err)
}
