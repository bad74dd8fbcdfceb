package devserver

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showup-events/showup/internal/connection"
	"github.com/showup-events/showup/internal/util/ptr"
)

func (s *Server) listConnections(c *gin.Context) {
	userID := c.GetString(userIDKey)

	s.mu.Lock()
	out := []connection.Connection{}
	for _, conn := range s.connections {
		if conn.UserID == userID {
			out = append(out, conn)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (s *Server) createConnection(c *gin.Context) {
	var conn connection.Connection
	if err := c.ShouldBindJSON(&conn); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if conn.UserID != c.GetString(userIDKey) {
		abort(c, http.StatusForbidden, "Cannot create connections for another user")
		return
	}
	if err := s.validate.Struct(conn); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	now := s.clock.Now().UTC()
	conn.ID = uuid.NewString()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now
	if conn.Accounts == nil {
		conn.Accounts = []string{}
	}

	s.mu.Lock()
	s.connections[conn.ID] = conn
	s.mu.Unlock()

	c.JSON(http.StatusCreated, conn)
}

func (s *Server) updateConnection(c *gin.Context) {
	var patch connection.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		abort(c, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	s.mu.Lock()
	conn, status := s.ownedLocked(c.Param("id"), c.GetString(userIDKey))
	if status != http.StatusOK {
		s.mu.Unlock()
		abort(c, status, http.StatusText(status))
		return
	}
	conn.Name = ptr.Deref(patch.Name, conn.Name)
	conn.Description = ptr.Deref(patch.Description, conn.Description)
	if patch.Accounts != nil {
		conn.Accounts = append([]string{}, patch.Accounts...)
	}
	conn.UpdatedAt = s.clock.Now().UTC()
	s.connections[conn.ID] = conn
	s.mu.Unlock()

	c.JSON(http.StatusOK, conn)
}

func (s *Server) deleteConnection(c *gin.Context) {
	s.mu.Lock()
	conn, status := s.ownedLocked(c.Param("id"), c.GetString(userIDKey))
	if status == http.StatusOK {
		delete(s.connections, conn.ID)
	}
	s.mu.Unlock()

	if status != http.StatusOK {
		abort(c, status, http.StatusText(status))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Connection deleted"})
}

func (s *Server) ownedLocked(id, userID string) (connection.Connection, int) {
	conn, ok := s.connections[id]
	if !ok {
		return connection.Connection{}, http.StatusNotFound
	}
	if conn.UserID != userID {
		return connection.Connection{}, http.StatusForbidden
	}
	return conn, http.StatusOK
}

// Connections returns a snapshot of every stored connection.
func (s *Server) Connections() []connection.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]connection.Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		out = append(out, conn)
	}
	return out
}
