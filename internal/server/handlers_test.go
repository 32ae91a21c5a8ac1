package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/groupcast/groupcast/internal/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hub := NewHub()
	t.Cleanup(func() { hub.Shutdown(time.Second) })

	ts := httptest.NewServer(New(store, hub, 25*time.Millisecond).Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, ts *httptest.Server, path, body string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Failed to decode response from POST %s: %v", path, err)
	}
	return resp.StatusCode, decoded
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Failed to decode response from GET %s: %v", path, err)
	}
	return resp.StatusCode, decoded
}

// signupUser registers a user through the API and returns the assigned ID.
func signupUser(t *testing.T, ts *httptest.Server, login, password string) string {
	t.Helper()

	status, body := postJSON(t, ts, "/signup",
		fmt.Sprintf(`{"login": %q, "password": %q}`, login, password))
	if status != http.StatusOK {
		t.Fatalf("Signup returned status %d", status)
	}
	id, ok := body["user_id"].(string)
	if !ok {
		t.Fatalf("Signup did not return a user_id: %v", body)
	}
	return id
}

func TestLoginPayload(t *testing.T) {
	got := loginPayload("abc", true)
	if got["user_id"] != "abc" || len(got) != 1 {
		t.Errorf(`loginPayload("abc", true) = %v; want {"user_id": "abc"}`, got)
	}

	got = loginPayload("", false)
	if got["error"] != "auth failed" || len(got) != 1 {
		t.Errorf(`loginPayload("", false) = %v; want {"error": "auth failed"}`, got)
	}
}

func TestSignup(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Uppercase login is rejected", func(t *testing.T) {
		status, body := postJSON(t, ts, "/signup", `{"login": "Bob", "password": "pw"}`)
		if status != http.StatusOK {
			t.Errorf("Status = %d, want 200", status)
		}
		if body["error"] != "login not in lowercase" {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("Valid signup returns a UUID identifier", func(t *testing.T) {
		id := signupUser(t, ts, "bob", "pw")
		if !uuidShape.MatchString(id) {
			t.Errorf("user_id %q is not UUID-shaped", id)
		}
	})

	t.Run("Duplicate login is rejected", func(t *testing.T) {
		_, body := postJSON(t, ts, "/signup", `{"login": "bob", "password": "pw"}`)
		if body["error"] != "user already exists" {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("Field validation messages", func(t *testing.T) {
		cases := []struct {
			body string
			want string
		}{
			{`{"login": 42, "password": "pw"}`, "login not a string"},
			{`{"password": "pw"}`, "login is empty"},
			{`{"login": "", "password": "pw"}`, "login is empty"},
			{`{"login": "eve", "password": 42}`, "password not a string"},
			{`{"login": "eve"}`, "password is empty"},
			{`{"login": "eve", "password": ""}`, "password is empty"},
		}
		for _, tc := range cases {
			status, body := postJSON(t, ts, "/signup", tc.body)
			if status != http.StatusOK {
				t.Errorf("Status for %s = %d, want 200", tc.body, status)
			}
			if body["error"] != tc.want {
				t.Errorf("Signup %s = %v; want error %q", tc.body, body, tc.want)
			}
		}
	})
}

func TestLogin(t *testing.T) {
	ts, _ := newTestServer(t)
	id := signupUser(t, ts, "dave", "hunter2")

	t.Run("Correct credentials return the identifier", func(t *testing.T) {
		status, body := postJSON(t, ts, "/login", `{"login": "dave", "password": "hunter2"}`)
		if status != http.StatusOK {
			t.Errorf("Status = %d, want 200", status)
		}
		if body["user_id"] != id {
			t.Errorf("Login returned %v, want user_id %q", body, id)
		}
	})

	t.Run("Wrong password and unknown login are indistinguishable", func(t *testing.T) {
		_, wrongPassword := postJSON(t, ts, "/login", `{"login": "dave", "password": "nope"}`)
		_, unknownLogin := postJSON(t, ts, "/login", `{"login": "nobody", "password": "hunter2"}`)

		want := map[string]any{"error": "auth failed"}
		for name, got := range map[string]map[string]any{
			"wrong password": wrongPassword,
			"unknown login":  unknownLogin,
		} {
			if len(got) != 1 || got["error"] != want["error"] {
				t.Errorf("%s: got %v, want %v", name, got, want)
			}
		}
	})
}

func TestCreateGroup(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Valid group returns its identifier", func(t *testing.T) {
		status, body := postJSON(t, ts, "/group", `{"name": "admins"}`)
		if status != http.StatusOK {
			t.Errorf("Status = %d, want 200", status)
		}
		if _, ok := body["group_id"].(float64); !ok {
			t.Errorf("Expected a numeric group_id, got %v", body)
		}
	})

	t.Run("Duplicate name is rejected", func(t *testing.T) {
		_, body := postJSON(t, ts, "/group", `{"name": "admins"}`)
		if body["error"] != "group already exists" {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("Name validation messages", func(t *testing.T) {
		cases := []struct {
			body string
			want string
		}{
			{`{"name": 42}`, "group name not a string"},
			{`{}`, "group name is empty"},
			{`{"name": ""}`, "group name is empty"},
			{`{"name": "Admins"}`, "group name not in lowercase"},
		}
		for _, tc := range cases {
			_, body := postJSON(t, ts, "/group", tc.body)
			if body["error"] != tc.want {
				t.Errorf("Create group %s = %v; want error %q", tc.body, body, tc.want)
			}
		}
	})
}

func TestManageGroup(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := t.Context()

	userID := signupUser(t, ts, "erin", "pw")
	_, body := postJSON(t, ts, "/group", `{"name": "admins"}`)
	groupID := int64(body["group_id"].(float64))
	groupPath := fmt.Sprintf("/group/%d", groupID)

	t.Run("Validation order", func(t *testing.T) {
		_, body := postJSON(t, ts, "/group/9999",
			fmt.Sprintf(`{"action": "add_user", "user_id": %q}`, userID))
		if body["error"] != "group does not exist" {
			t.Errorf("Unknown group: got %v", body)
		}

		_, body = postJSON(t, ts, groupPath, `{"action": "add_user", "user_id": "not-a-uuid"}`)
		if body["error"] != "incorrect type of user ID" {
			t.Errorf("Malformed user ID: got %v", body)
		}

		_, body = postJSON(t, ts, groupPath, `{"action": "add_user", "user_id": 42}`)
		if body["error"] != "incorrect type of user ID" {
			t.Errorf("Non-string user ID: got %v", body)
		}

		_, body = postJSON(t, ts, groupPath,
			`{"action": "add_user", "user_id": "00000000-0000-0000-0000-000000000000"}`)
		if body["error"] != "user does not exist" {
			t.Errorf("Unknown user: got %v", body)
		}
	})

	t.Run("Adding twice is idempotent", func(t *testing.T) {
		want := fmt.Sprintf("user %s added to group %d", userID, groupID)
		for i := 0; i < 2; i++ {
			_, body := postJSON(t, ts, groupPath,
				fmt.Sprintf(`{"action": "add_user", "user_id": %q}`, userID))
			if body["msg"] != want {
				t.Errorf("Add #%d: got %v, want msg %q", i+1, body, want)
			}
		}

		names, err := store.ListGroupsForUser(ctx, userID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(names) != 1 {
			t.Errorf("Expected exactly one membership, got %v", names)
		}
	})

	t.Run("Deleting a member removes it", func(t *testing.T) {
		_, body := postJSON(t, ts, groupPath,
			fmt.Sprintf(`{"action": "del_user", "user_id": %q}`, userID))
		want := fmt.Sprintf("user %s deleted from group %d", userID, groupID)
		if body["msg"] != want {
			t.Errorf("Got %v, want msg %q", body, want)
		}

		member, err := store.IsMember(ctx, userID, groupID)
		if err != nil || member {
			t.Errorf("IsMember after delete = %v, %v; want false, nil", member, err)
		}
	})

	t.Run("Deleting a non-member is a no-op", func(t *testing.T) {
		_, body := postJSON(t, ts, groupPath,
			fmt.Sprintf(`{"action": "del_user", "user_id": %q}`, userID))
		want := fmt.Sprintf("user %s not in group %d", userID, groupID)
		if body["msg"] != want {
			t.Errorf("Got %v, want msg %q", body, want)
		}
	})

	t.Run("Unknown action is rejected", func(t *testing.T) {
		_, body := postJSON(t, ts, groupPath,
			fmt.Sprintf(`{"action": "promote_user", "user_id": %q}`, userID))
		if body["error"] != "unknown type of operation" {
			t.Errorf("Got %v", body)
		}
	})
}

func TestUserGroups(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("Unknown user returns 404", func(t *testing.T) {
		status, body := getJSON(t, ts, "/user/00000000-0000-0000-0000-000000000000/groups")
		if status != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", status)
		}
		if body["error"] != "user does not exist" {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	userID := signupUser(t, ts, "frank", "pw")

	t.Run("User with no memberships gets an empty array", func(t *testing.T) {
		status, body := getJSON(t, ts, "/user/"+userID+"/groups")
		if status != http.StatusOK {
			t.Errorf("Status = %d, want 200", status)
		}
		groups, ok := body["groups"].([]any)
		if !ok {
			t.Fatalf("Expected a groups array (never null), got %v", body)
		}
		if len(groups) != 0 {
			t.Errorf("Expected no groups, got %v", groups)
		}
	})

	t.Run("Memberships appear by group name", func(t *testing.T) {
		_, body := postJSON(t, ts, "/group", `{"name": "staff"}`)
		groupID := int64(body["group_id"].(float64))
		postJSON(t, ts, fmt.Sprintf("/group/%d", groupID),
			fmt.Sprintf(`{"action": "add_user", "user_id": %q}`, userID))

		_, body = getJSON(t, ts, "/user/"+userID+"/groups")
		groups, _ := body["groups"].([]any)
		if len(groups) != 1 || groups[0] != "staff" {
			t.Errorf("Expected [staff], got %v", groups)
		}
	})
}
