package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /csrf-token/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"csrfToken": "tok-" + r.PathValue("id")})
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{
			"tasks": []map[string]any{{"id": 1, "user_id": 7, "title": "Write docs", "status": "in_progress"}},
			"total": 1,
		})
	})
	mux.HandleFunc("DELETE /task/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-CSRF-Token") != "tok-7" {
			reply(w, http.StatusForbidden, map[string]string{"error": "Invalid CSRF token"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "Task deleted successfully."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runCmd(t, "--addr", srv.URL, "-u", "7", "token")
	require.NoError(t, err)
	assert.Equal(t, "tok-7\n", out)
}

func TestListCmd(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runCmd(t, "--addr", srv.URL, "-u", "7", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "1 task(s)")
}

func TestDeleteCmd(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runCmd(t, "--addr", srv.URL, "-u", "7", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Task 3 deleted")

	_, err = runCmd(t, "--addr", srv.URL, "-u", "7", "delete", "abc")
	assert.ErrorContains(t, err, "invalid task id")
}

func TestUpdateCmd_RequiresAField(t *testing.T) {
	_, err := runCmd(t, "-u", "7", "update", "3")
	assert.ErrorContains(t, err, "nothing to update")
}

func TestRequiresUser(t *testing.T) {
	_, err := runCmd(t, "list")
	assert.Error(t, err)
}
