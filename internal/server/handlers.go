// Package server implements the HTTP and WebSocket surface of groupcast.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/groupcast/groupcast/internal/auth"
	"github.com/groupcast/groupcast/internal/storage"
)

// uuidShape matches the lowercase 8-4-4-4-12 form user identifiers take on
// the wire. Path parameters and the Authentication header must match it
// before any database work happens.
var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Server holds the handler dependencies: the store, the bcrypt
// authenticator, and the hub tracking live push channels.
type Server struct {
	store     storage.Store
	auth      *auth.PasswordAuthenticator
	hub       *Hub
	heartbeat time.Duration
}

// New creates a Server backed by the given store. The hub is owned by the
// caller so shutdown can close the remaining streams in one place; heartbeat
// is the push interval for the streaming endpoints.
func New(store storage.Store, hub *Hub, heartbeat time.Duration) *Server {
	return &Server{
		store:     store,
		auth:      auth.NewPasswordAuthenticator(store),
		hub:       hub,
		heartbeat: heartbeat,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// handleSignup validates the signup input and creates the account. All
// validation failures are JSON error envelopes with HTTP 200.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	badField, err := decodeBody(r, &req)
	if err != nil {
		internalError(w, err)
		return
	}
	if badField != "" {
		errorJSON(w, http.StatusOK, badField+" not a string")
		return
	}

	msg, err := s.checkSignup(r.Context(), req.Login, req.Password)
	if err != nil {
		internalError(w, err)
		return
	}
	if msg != "" {
		errorJSON(w, http.StatusOK, msg)
		return
	}

	id, err := s.auth.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		internalError(w, err)
		return
	}

	slog.Info("User signed up", "user_id", id, "login", req.Login)
	writeJSON(w, http.StatusOK, map[string]string{"user_id": id})
}

// checkSignup runs the signup validation chain in order, returning the first
// failure message or "" when the input is acceptable.
func (s *Server) checkSignup(ctx context.Context, login, password string) (string, error) {
	if login == "" {
		return "login is empty", nil
	}
	if strings.ToLower(login) != login {
		return "login not in lowercase", nil
	}
	if password == "" {
		return "password is empty", nil
	}
	if _, ok, err := s.store.UserIDByLogin(ctx, login); err != nil {
		return "", err
	} else if ok {
		return "user already exists", nil
	}
	return "", nil
}

// loginPayload shapes the login response body: the user identifier on
// success, the uniform auth-failure envelope otherwise.
func loginPayload(userID string, ok bool) map[string]string {
	if !ok {
		return map[string]string{"error": "auth failed"}
	}
	return map[string]string{"user_id": userID}
}

// handleLogin attempts credential verification with no pre-validation. A
// wrong password and an unknown login produce the identical payload.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if _, err := decodeBody(r, &req); err != nil {
		internalError(w, err)
		return
	}

	id, ok, err := s.auth.Verify(r.Context(), req.Login, req.Password)
	if err != nil {
		internalError(w, err)
		return
	}

	if ok {
		slog.Info("User logged in", "user_id", id)
	} else {
		slog.Info("Login failed", "login", req.Login)
	}
	writeJSON(w, http.StatusOK, loginPayload(id, ok))
}

// handleUserGroups lists the group names the user belongs to.
func (s *Server) handleUserGroups(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if !uuidShape.MatchString(userID) {
		http.NotFound(w, r)
		return
	}

	exists, err := s.store.UserExists(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !exists {
		errorJSON(w, http.StatusNotFound, "user does not exist")
		return
	}

	groups, err := s.store.ListGroupsForUser(r.Context(), userID)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// handleCreateGroup validates the group name and creates the group.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	badField, err := decodeBody(r, &req)
	if err != nil {
		internalError(w, err)
		return
	}
	if badField == "name" {
		errorJSON(w, http.StatusOK, "group name not a string")
		return
	}

	msg, err := s.checkCreateGroup(r.Context(), req.Name)
	if err != nil {
		internalError(w, err)
		return
	}
	if msg != "" {
		errorJSON(w, http.StatusOK, msg)
		return
	}

	id, err := s.store.CreateGroup(r.Context(), req.Name)
	if err != nil {
		internalError(w, err)
		return
	}

	slog.Info("Group created", "group_id", id, "name", req.Name)
	writeJSON(w, http.StatusOK, map[string]int64{"group_id": id})
}

// checkCreateGroup mirrors the signup validation chain for group names.
func (s *Server) checkCreateGroup(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "group name is empty", nil
	}
	if strings.ToLower(name) != name {
		return "group name not in lowercase", nil
	}
	if _, ok, err := s.store.GroupIDByName(ctx, name); err != nil {
		return "", err
	} else if ok {
		return "group already exists", nil
	}
	return "", nil
}

type manageGroupRequest struct {
	Action string `json:"action"`
	UserID string `json:"user_id"`
}

// handleManageGroup adds a user to or removes a user from a group.
//
// Validation order: the group must exist, the user_id must be UUID-shaped,
// the user must exist. Both mutations are idempotent from the caller's view:
// add reports success whether or not the row was inserted, delete reports a
// distinct no-op message when the user was not a member.
func (s *Server) handleManageGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var req manageGroupRequest
	badField, err := decodeBody(r, &req)
	if err != nil {
		internalError(w, err)
		return
	}

	exists, err := s.store.GroupExists(r.Context(), groupID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !exists {
		errorJSON(w, http.StatusOK, "group does not exist")
		return
	}

	if badField == "user_id" || !uuidShape.MatchString(req.UserID) {
		errorJSON(w, http.StatusOK, "incorrect type of user ID")
		return
	}

	exists, err = s.store.UserExists(r.Context(), req.UserID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !exists {
		errorJSON(w, http.StatusOK, "user does not exist")
		return
	}

	switch req.Action {
	case "add_user":
		s.addUserToGroup(w, r, req.UserID, groupID)
	case "del_user":
		s.deleteUserFromGroup(w, r, req.UserID, groupID)
	default:
		errorJSON(w, http.StatusOK, "unknown type of operation")
	}
}

func (s *Server) addUserToGroup(w http.ResponseWriter, r *http.Request, userID string, groupID int64) {
	member, err := s.store.IsMember(r.Context(), userID, groupID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !member {
		if err := s.store.AddMembership(r.Context(), userID, groupID); err != nil {
			internalError(w, err)
			return
		}
		slog.Info("Membership added", "user_id", userID, "group_id", groupID)
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"msg": fmt.Sprintf("user %s added to group %d", userID, groupID),
	})
}

func (s *Server) deleteUserFromGroup(w http.ResponseWriter, r *http.Request, userID string, groupID int64) {
	member, err := s.store.IsMember(r.Context(), userID, groupID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !member {
		writeJSON(w, http.StatusOK, map[string]string{
			"msg": fmt.Sprintf("user %s not in group %d", userID, groupID),
		})
		return
	}

	if err := s.store.RemoveMembership(r.Context(), userID, groupID); err != nil {
		internalError(w, err)
		return
	}
	slog.Info("Membership removed", "user_id", userID, "group_id", groupID)
	writeJSON(w, http.StatusOK, map[string]string{
		"msg": fmt.Sprintf("user %s deleted from group %d", userID, groupID),
	})
}

// handleHealth provides a simple liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
