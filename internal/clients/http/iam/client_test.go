package iam

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateToken_Valid(t *testing.T) {
	var gotBody, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ValidationResult{Valid: true, Subject: "alice"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	subject, err := client.ValidateToken(context.Background(), "raw-token")
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
	require.Equal(t, "raw-token", gotBody)
	require.Equal(t, "/api/v1/auth/validate", gotPath)
}

func TestValidateToken_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.ValidateToken(context.Background(), "bad")
	require.ErrorIs(t, err, ErrTokenRejected)
}

func TestValidateToken_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	_, err = client.ValidateToken(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(loginResponse{Token: "tok-" + body.Username, Message: "Login successful"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	token, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "tok-alice", token)

	_, err = client.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrTokenRejected)
}

func TestValidate_BareOKIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	result, err := client.Validate(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Empty(t, result.Subject)
}
