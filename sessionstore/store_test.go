// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/secret"
)

// apiStub is a minimal login/register server.
func apiStub(t *testing.T) *feedapi.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
			}
			if r.PostForm.Get("password") != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "invalid credentials"}`))
				return
			}
			fmt.Fprintf(w, `{"access_token": "tok123", "token_type": "bearer", "user_id": 42, "username": %q}`,
				r.PostForm.Get("username"))
		case "/user/":
			w.Write([]byte(`{"id": 42, "username": "ada", "email": "ada@example.com"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := feedapi.NewClient(feedapi.ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Backend: backend, Client: apiStub(t)})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func testPassword(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	password, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("secret.NewFromString: %v", err)
	}
	t.Cleanup(func() { password.Close() })
	return password
}

func checkStored(t *testing.T, backend Backend, want map[string]string) {
	t.Helper()
	for _, key := range sessionKeys {
		value, ok, err := backend.Get(key)
		if err != nil {
			t.Fatalf("Get(%s): %v", key, err)
		}
		wantValue, wantPresent := want[key]
		if ok != wantPresent {
			t.Errorf("key %s: present = %v, want %v", key, ok, wantPresent)
		}
		if value != wantValue {
			t.Errorf("key %s = %q, want %q", key, value, wantValue)
		}
	}
}

var fullSession = map[string]string{
	KeyAuthToken:     "tok123",
	KeyAuthTokenType: "bearer",
	KeyUsername:      "ada",
	KeyUserID:        "42",
}

func TestSignIn(t *testing.T) {
	t.Run("persists all four fields", func(t *testing.T) {
		backend := NewMapBackend()
		store := newTestStore(t, backend)

		session, err := store.SignIn(context.Background(), "ada", testPassword(t, "hunter2"))
		if err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		defer session.Close()

		checkStored(t, backend, fullSession)
	})

	t.Run("rejected credentials leave backend untouched", func(t *testing.T) {
		backend := NewMapBackend()
		store := newTestStore(t, backend)

		_, err := store.SignIn(context.Background(), "ada", testPassword(t, "wrong"))
		if !feedapi.IsStatus(err, http.StatusUnauthorized) {
			t.Fatalf("SignIn error = %v, want 401", err)
		}
		checkStored(t, backend, nil)
	})
}

func TestHydrate(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		backend := NewMapBackend()
		store := newTestStore(t, backend)

		signedIn, err := store.SignIn(context.Background(), "ada", testPassword(t, "hunter2"))
		if err != nil {
			t.Fatalf("SignIn: %v", err)
		}
		signedIn.Close()

		session, err := store.Hydrate()
		if err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if session == nil {
			t.Fatal("Hydrate returned nil after sign-in")
		}
		defer session.Close()

		if session.UserID() != "42" || session.Username() != "ada" {
			t.Errorf("hydrated identity = %s/%s, want 42/ada", session.UserID(), session.Username())
		}
		if session.AccessToken() != "tok123" || session.TokenType() != "bearer" {
			t.Error("hydrated credentials do not match persisted values")
		}
	})

	t.Run("empty backend is anonymous", func(t *testing.T) {
		store := newTestStore(t, NewMapBackend())
		session, err := store.Hydrate()
		if err != nil {
			t.Fatalf("Hydrate: %v", err)
		}
		if session != nil {
			t.Fatal("Hydrate returned a session from an empty backend")
		}
	})

	t.Run("any missing field is anonymous", func(t *testing.T) {
		for _, missing := range sessionKeys {
			backend := NewMapBackend()
			for key, value := range fullSession {
				if key != missing {
					backend.Set(key, value)
				}
			}
			store := newTestStore(t, backend)
			session, err := store.Hydrate()
			if err != nil {
				t.Fatalf("Hydrate without %s: %v", missing, err)
			}
			if session != nil {
				session.Close()
				t.Errorf("Hydrate without %s returned a session", missing)
			}
		}
	})
}

func TestClear(t *testing.T) {
	backend := NewMapBackend()
	store := newTestStore(t, backend)

	session, err := store.SignIn(context.Background(), "ada", testPassword(t, "hunter2"))
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := store.SignOut(session); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	checkStored(t, backend, nil)

	hydrated, err := store.Hydrate()
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if hydrated != nil {
		t.Fatal("Hydrate returned a session after SignOut")
	}
}

func TestSignOutWhileAnonymous(t *testing.T) {
	store := newTestStore(t, NewMapBackend())
	if err := store.SignOut(nil); err != nil {
		t.Fatalf("SignOut(nil): %v", err)
	}
}

// failingBackend fails Set for one key.
type failingBackend struct {
	*MapBackend
	failKey string
}

func (b *failingBackend) Set(key, value string) error {
	if key == b.failKey {
		return errors.New("disk full")
	}
	return b.MapBackend.Set(key, value)
}

func TestPersistIsAllOrNothing(t *testing.T) {
	backend := &failingBackend{MapBackend: NewMapBackend(), failKey: KeyUsername}
	store := newTestStore(t, backend)

	_, err := store.SignIn(context.Background(), "ada", testPassword(t, "hunter2"))
	if err == nil {
		t.Fatal("SignIn succeeded despite persistence failure")
	}
	// No partial session: the failed write triggered a full clear.
	checkStored(t, backend, nil)
}

func TestSignUp(t *testing.T) {
	t.Run("chains into sign-in", func(t *testing.T) {
		backend := NewMapBackend()
		store := newTestStore(t, backend)

		session, err := store.SignUp(context.Background(), "ada", "ada@example.com", testPassword(t, "hunter2"))
		if err != nil {
			t.Fatalf("SignUp: %v", err)
		}
		defer session.Close()

		if session.Username() != "ada" {
			t.Errorf("Username() = %q, want ada", session.Username())
		}
		checkStored(t, backend, fullSession)
	})

	t.Run("created account with failed sign-in is a SignInError", func(t *testing.T) {
		// Registration accepts any password, login only "hunter2".
		store := newTestStore(t, NewMapBackend())

		_, err := store.SignUp(context.Background(), "ada", "ada@example.com", testPassword(t, "mismatch"))
		var signInErr *SignInError
		if !errors.As(err, &signInErr) {
			t.Fatalf("SignUp error = %v, want *SignInError", err)
		}
		if signInErr.Username != "ada" {
			t.Errorf("SignInError.Username = %q, want ada", signInErr.Username)
		}
		if !feedapi.IsStatus(err, http.StatusUnauthorized) {
			t.Errorf("SignInError should unwrap to the 401, got %v", err)
		}
	})
}

func TestDirBackend(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		backend, err := NewDirBackend(filepath.Join(t.TempDir(), "session"))
		if err != nil {
			t.Fatalf("NewDirBackend: %v", err)
		}

		if _, ok, err := backend.Get(KeyAuthToken); err != nil || ok {
			t.Fatalf("Get on empty backend = ok %v, err %v", ok, err)
		}
		if err := backend.Set(KeyAuthToken, "tok123"); err != nil {
			t.Fatalf("Set: %v", err)
		}
		value, ok, err := backend.Get(KeyAuthToken)
		if err != nil || !ok || value != "tok123" {
			t.Fatalf("Get = %q, %v, %v", value, ok, err)
		}
		if err := backend.Delete(KeyAuthToken); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := backend.Get(KeyAuthToken); ok {
			t.Fatal("key present after Delete")
		}
		if err := backend.Delete(KeyAuthToken); err != nil {
			t.Fatalf("Delete of absent key: %v", err)
		}
	})

	t.Run("token file is owner-only", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "session")
		backend, err := NewDirBackend(dir)
		if err != nil {
			t.Fatalf("NewDirBackend: %v", err)
		}
		if err := backend.Set(KeyAuthToken, "tok123"); err != nil {
			t.Fatalf("Set: %v", err)
		}

		info, err := os.Stat(filepath.Join(dir, KeyAuthToken))
		if err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("token file mode = %o, want 0600", perm)
		}
		dirInfo, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("Stat dir: %v", err)
		}
		if perm := dirInfo.Mode().Perm(); perm != 0o700 {
			t.Errorf("session dir mode = %o, want 0700", perm)
		}
	})

	t.Run("requires a directory", func(t *testing.T) {
		if _, err := NewDirBackend(""); err == nil {
			t.Fatal("NewDirBackend(\"\") succeeded")
		}
	})
}
