//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcacademy/academyweb/internal/admin"
)

func (s *IntegrationTestSuite) adminRequest(
	ctx context.Context,
	method, path, token string,
	body any,
) *http.Response {
	req := s.newRequest(ctx, method, path, token)
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		req.Body = io.NopCloser(bytes.NewReader(raw))
		req.ContentLength = int64(len(raw))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *IntegrationTestSuite) TestAdminAccounts() {
	t := s.T()
	ctx := context.Background()
	sess := s.doLogin(ctx)

	resp := s.adminRequest(ctx, http.MethodGet, "/api/admin/admins", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = s.adminRequest(ctx, http.MethodPost, "/api/admin/admins", sess.Token, admin.CreateRequest{
		Username: "assistant",
		Password: "assistant-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created admin.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "assistant", created.Username)
	assert.Empty(t, created.PasswordHash)

	resp = s.adminRequest(ctx, http.MethodPost, "/api/admin/admins", sess.Token, admin.CreateRequest{
		Username: "assistant",
		Password: "another-password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = s.adminRequest(ctx, http.MethodGet, "/api/admin/admins", sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accounts []admin.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accounts))
	require.NoError(t, resp.Body.Close())
	require.Len(t, accounts, 2)

	var self admin.Account
	for _, a := range accounts {
		if a.Username == testUsername {
			self = a
		}
	}
	require.NotZero(t, self.ID)

	resp = s.adminRequest(ctx, http.MethodDelete, adminPath(self.ID), sess.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	// the new account can log in and manage content
	assistantSess, err := s.apiClient.Login(ctx, "assistant", "assistant-password")
	require.NoError(t, err)

	resp = s.adminRequest(ctx, http.MethodDelete, adminPath(created.ID), sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted admin.DeleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&deleted))
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, created.ID, deleted.ID)

	// the last admin cannot be removed, not even by a still valid token of a removed account
	resp = s.adminRequest(ctx, http.MethodDelete, adminPath(self.ID), assistantSess.Token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
