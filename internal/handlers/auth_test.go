package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestSignUp(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		m := newMockService()
		m.signUpFn = func(username, password string) (int, error) {
			if username != "alice" || password != "s3cret" {
				t.Fatalf("credentials not forwarded: %q/%q", username, password)
			}
			return 7, nil
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/auth/sign-up",
			[]byte(`{"username":"alice","password":"s3cret"}`), false)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
		}
		var resp map[string]int
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp["id"] != 7 {
			t.Fatalf("unexpected body: %v", resp)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doRequest(newTestRouter(newMockService()), http.MethodPost, "/auth/sign-up",
			[]byte(`{"username":"alice"}`), false)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		m := newMockService()
		m.signUpFn = func(string, string) (int, error) {
			return 0, errors.New("unique constraint failed")
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/auth/sign-up",
			[]byte(`{"username":"alice","password":"s3cret"}`), false)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestSignIn(t *testing.T) {
	t.Run("token issued", func(t *testing.T) {
		m := newMockService()
		m.generateTokenFn = func(username, password string) (string, error) {
			return "issued-token", nil
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/auth/sign-in",
			[]byte(`{"username":"alice","password":"s3cret"}`), false)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp["token"] != "issued-token" {
			t.Fatalf("unexpected body: %v", resp)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		m := newMockService()
		m.generateTokenFn = func(string, string) (string, error) {
			return "", errors.New("invalid password")
		}
		w := doRequest(newTestRouter(m), http.MethodPost, "/auth/sign-in",
			[]byte(`{"username":"alice","password":"wrong"}`), false)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
