package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/storefront/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestClient_Login(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("expected path /api/auth/login, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.com", req.Email)

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Login successful",
			"data": map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"_id": "u1", "name": "Ada", "email": "ada@example.com", "role": "admin"},
			},
		})
	})

	res, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"non-2xx with message", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
		{"non-2xx without message", http.StatusInternalServerError, `{}`, FallbackMessage},
		{"non-2xx with non-json body", http.StatusBadGateway, `<html>bad gateway</html>`, FallbackMessage},
		{"2xx with success false", http.StatusOK, `{"success":false,"message":"Code expired"}`, "Code expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.ForgetPassword(context.Background(), "ada@example.com")
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestMessage_NonAPIError(t *testing.T) {
	assert.Equal(t, FallbackMessage, Message(errors.New("dial tcp: refused")))
}

func TestClient_BearerToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("expected bearer token, got %q", got)
		}
		switch r.URL.Path {
		case "/api/user/me":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "u9", "role": "user"}})
		case "/api/user/update-role/u9":
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin", body["role"])
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Role updated"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	me, err := c.Me(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, "u9", me.ID)

	msg, err := c.UpdateUserRole(context.Background(), "tok-9", "u9", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Role updated", msg)

	_, err = c.UpdateUserRole(context.Background(), "tok-9", "u9", models.RoleNone)
	assert.Error(t, err)
}

func TestClient_ResourcePaths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/all"):
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []map[string]any{{"_id": "b1", "name": "Acme"}}})
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "b1", "name": "Acme"}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
		}
	})

	ctx := context.Background()
	brands := c.Brands()

	all, err := brands.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Acme", all[0].Name)

	one, err := brands.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", one.ID)

	_, err = brands.Create(ctx, "tok", models.Brand{Name: "New"})
	require.NoError(t, err)
	_, err = brands.Update(ctx, "tok", "b1", models.Brand{Name: "Renamed"})
	require.NoError(t, err)
	_, err = c.ProductTypes().Delete(ctx, "tok", "t1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/brand/all",
		"GET /api/brand/b1",
		"POST /api/brand/add",
		"PUT /api/brand/update/b1",
		"DELETE /api/product-type/delete/t1",
	}, seen)
}

func TestClient_ProductMultipart(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/product/update/p1", r.URL.Path)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		assert.Equal(t, "Chair", r.FormValue("name"))
		assert.Equal(t, "19.5", r.FormValue("price"))
		assert.Equal(t, "b1", r.FormValue("brandId"))
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, r.MultipartForm.Value["existingImages"])
		assert.Equal(t, []string{"c.jpg"}, r.MultipartForm.Value["deletedImages"])

		files := r.MultipartForm.File["images"]
		if assert.Len(t, files, 1) {
			assert.Equal(t, "new.png", files[0].Filename)
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product updated"})
	})

	msg, err := c.Products().Update(context.Background(), "tok", "p1", ProductInput{
		Name:           "Chair",
		Price:          19.5,
		BrandID:        "b1",
		ProductTypeID:  "t1",
		ExistingImages: []string{"a.jpg", "b.jpg"},
		NewImages:      []Upload{{Filename: "new.png", Content: strings.NewReader("png-bytes")}},
		DeletedImages:  []string{"c.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Product updated", msg)
}

func TestClient_ContextCancel(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ForgetPassword(ctx, "a@b.c")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ImageURL(t *testing.T) {
	c := New("https://shop.example.com/")
	assert.Equal(t, "https://shop.example.com/uploads/chair.jpg", c.ImageURL("chair.jpg"))
}
