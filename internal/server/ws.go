package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait is the deadline for a single outgoing message.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleUserStream upgrades to a per-user push channel. The user must exist;
// the check happens before the upgrade so a failure is a plain HTTP response.
func (s *Server) handleUserStream(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
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

	s.serveStream(w, r, fmt.Sprintf("message for user %s", userID))
}

// handleGroupStream upgrades to a per-group push channel. The caller
// identifies itself with a UUID in the Authentication header and must be a
// member of the group. A wrong identity and a non-member are surfaced the
// same way a failed login is: an error envelope with HTTP 200.
func (s *Server) handleGroupStream(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	userID := r.Header.Get("Authentication")
	if !uuidShape.MatchString(userID) {
		errorJSON(w, http.StatusOK, "incorrect user id")
		return
	}

	groupID, ok, err := s.store.GroupIDByName(r.Context(), group)
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		errorJSON(w, http.StatusNotFound, "group does not exist")
		return
	}

	member, err := s.store.IsMember(r.Context(), userID, groupID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !member {
		errorJSON(w, http.StatusOK, "user not in group")
		return
	}

	s.serveStream(w, r, fmt.Sprintf("message for members of group %s", group))
}

// serveStream upgrades the connection and pushes msg immediately and then on
// every heartbeat tick until the peer disconnects or the hub shuts down. No
// database resource is held once the loop starts; the loop owns only the
// socket.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, msg string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	st := s.hub.Add(conn)
	defer s.hub.Remove(st)

	// Drain incoming frames so peer close is noticed promptly.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				st.close()
				return
			}
		}
	}()

	payload := map[string]string{"msg": msg}
	if !writeHeartbeat(conn, payload) {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case <-ticker.C:
			if !writeHeartbeat(conn, payload) {
				return
			}
		}
	}
}

func writeHeartbeat(conn *websocket.Conn, payload map[string]string) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(payload); err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			slog.Debug("Heartbeat write failed", "error", err)
		}
		return false
	}
	return true
}
