package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskdo/backend/internal/service/auth"
	"github.com/taskdo/backend/internal/testutil"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// doJSON sends a request with the given bearer token and decodes the response
func doJSON(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(raw)
}

func Test_TaskHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	registerUser := func(t *testing.T, authService *auth.AuthService, email string) string {
		_, pair, err := authService.Register(t.Context(), "Tom", email, "StrongEnoughPassword")
		require.NoError(t, err)
		return pair.Access.Value
	}

	t.Run("create and get task", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			token := registerUser(t, authService, "tom@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", token,
				`{"title": "Buy milk", "description": "2 liters"}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var created struct {
				ID    int64  `json:"id"`
				Title string `json:"title"`
				Done  bool   `json:"done"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))
			require.Equal(t, "Buy milk", created.Title)
			require.False(t, created.Done, "new task should not be done")

			resp, body = doJSON(t, "GET", url+"/api/tasks/"+itoa(created.ID), token, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"title":"Buy milk"`)
		})
	})

	t.Run("list returns only own tasks", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			tomToken := registerUser(t, authService, "tom@example.com")
			annToken := registerUser(t, authService, "ann@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", tomToken, `{"title": "Tom task"}`)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			resp, body = doJSON(t, "GET", url+"/api/tasks", annToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `[]`, body, "ann should not see tom's tasks")

			resp, body = doJSON(t, "GET", url+"/api/tasks", tomToken, "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"title":"Tom task"`)
		})
	})

	t.Run("foreign task reads and deletes as not found", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			tomToken := registerUser(t, authService, "tom@example.com")
			annToken := registerUser(t, authService, "ann@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", tomToken, `{"title": "Tom task"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			var created struct {
				ID int64 `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			for _, method := range []string{"GET", "DELETE"} {
				resp, body = doJSON(t, method, url+"/api/tasks/"+itoa(created.ID), annToken, "")
				require.Equalf(t, http.StatusNotFound, resp.StatusCode, "%s on foreign task. Body: %s", method, body)
			}
		})
	})

	t.Run("update task fields", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			token := registerUser(t, authService, "tom@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", token,
				`{"title": "Buy milk", "deadline": "2026-09-01T10:00:00Z"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			var created struct {
				ID int64 `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			resp, body = doJSON(t, "PATCH", url+"/api/tasks/"+itoa(created.ID), token,
				`{"done": true, "clear_deadline": true}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var updated struct {
				Title    string  `json:"title"`
				Done     bool    `json:"done"`
				Deadline *string `json:"deadline"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &updated))
			require.Equal(t, "Buy milk", updated.Title, "title should be unchanged")
			require.True(t, updated.Done)
			require.Nil(t, updated.Deadline, "deadline should be cleared")
		})
	})

	t.Run("delete task", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			token := registerUser(t, authService, "tom@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", token, `{"title": "Buy milk"}`)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			var created struct {
				ID int64 `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			resp, _ = doJSON(t, "DELETE", url+"/api/tasks/"+itoa(created.ID), token, "")
			require.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, _ = doJSON(t, "DELETE", url+"/api/tasks/"+itoa(created.ID), token, "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode, "second delete should be not found")
		})
	})

	t.Run("missing title rejected", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, authService *auth.AuthService, _ *mailRecorder) {
			token := registerUser(t, authService, "tom@example.com")

			resp, body := doJSON(t, "POST", url+"/api/tasks", token, `{"description": "no title"}`)
			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "validation_failed")
		})
	})

	t.Run("unauthenticated requests rejected", func(t *testing.T) {
		serveApp(pg.Pool, t, func(url string, _ *auth.AuthService, _ *mailRecorder) {
			resp, body := doJSON(t, "GET", url+"/api/tasks", "", "")
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
