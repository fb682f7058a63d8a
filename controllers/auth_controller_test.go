package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSignupLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/auth/signup", "", gin.H{
		"email": "alice@example.com", "name": "alice", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["message"] != "User created!" {
		t.Errorf("message = %v, want %q", body["message"], "User created!")
	}
	if body["userId"] == nil {
		t.Error("signup response missing userId")
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	body = decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Error("login response missing token")
	}
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/auth/signup", "", gin.H{
		"email": "nope", "name": "", "password": "abc",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["message"] != "Validation failed" {
		t.Errorf("message = %v", body["message"])
	}
	if _, ok := body["data"].([]any); !ok {
		t.Errorf("expected data list of field errors, got %v", body["data"])
	}
}

func TestSignupDuplicateEmailHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	signupAndLogin(t, r, "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPut, "/auth/signup", "", gin.H{
		"email": "alice@example.com", "name": "imposter", "password": "secret2",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestLoginWrongPasswordHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	signupAndLogin(t, r, "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-one",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401, body %s", w.Code, w.Body.String())
	}
}

func TestLoginUnknownUserHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "ghost@example.com", "password": "whatever",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestStatusEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := signupAndLogin(t, r, "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodGet, "/auth/status", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status: %d, body %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["status"] != "I am new!" {
		t.Errorf("fresh status = %v", body["status"])
	}

	w = doJSON(t, r, http.MethodPut, "/auth/status", token, gin.H{"status": "hacking away"})
	if w.Code != http.StatusOK {
		t.Fatalf("put status: %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/auth/status", token, nil)
	if body := decodeBody(t, w); body["status"] != "hacking away" {
		t.Errorf("status after update = %v", body["status"])
	}
}

func TestStatusRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/auth/status", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newTestRouter(t)
	token, _ := signupAndLogin(t, r, "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/auth/status", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token still accepted: status %d", w.Code)
	}
}
