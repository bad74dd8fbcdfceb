package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showup-events/showup/internal/api"
)

const userIDKey = "userID"

func (s *Server) login(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	rec, ok := s.users[s.byName[creds.Username]]
	if !ok || rec.password != creds.Password {
		s.mu.Unlock()
		abort(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := uuid.NewString()
	s.sessions[token] = rec.user.ID
	user := rec.user
	s.mu.Unlock()

	setSessionCookie(c, token, sessionMaxAge)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// refresh rotates the session token.
func (s *Server) refresh(c *gin.Context) {
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.mu.Lock()
	userID, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	delete(s.sessions, token)
	next := uuid.NewString()
	s.sessions[next] = userID
	s.mu.Unlock()

	setSessionCookie(c, next, sessionMaxAge)
	c.JSON(http.StatusOK, gin.H{"message": "Session refreshed"})
}

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s.mu.Lock()
		userID, ok := s.sessions[token]
		s.mu.Unlock()
		if !ok {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// Expire drops every session, forcing clients through refresh and login.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, maxAge, "/", "", false, true)
}

func (s *Server) getUser(c *gin.Context) {
	id := c.Param("id")
	if id != c.GetString(userIDKey) {
		abort(c, http.StatusForbidden, "Forbidden")
		return
	}

	s.mu.Lock()
	rec, ok := s.users[id]
	var user api.User
	if ok {
		user = rec.user
	}
	s.mu.Unlock()

	if !ok {
		abort(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

type userPatch struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	AvatarURL *string `json:"avatarUrl"`
}

func (s *Server) updateUser(c *gin.Context) {
	id := c.Param("id")
	if id != c.GetString(userIDKey) {
		abort(c, http.StatusForbidden, "Forbidden")
		return
	}

	var patch userPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	rec, ok := s.users[id]
	if !ok {
		s.mu.Unlock()
		abort(c, http.StatusNotFound, "User not found")
		return
	}
	if patch.Username != nil && *patch.Username != rec.user.Username {
		if _, taken := s.byName[*patch.Username]; taken {
			s.mu.Unlock()
			abort(c, http.StatusConflict, "Username already taken")
			return
		}
		delete(s.byName, rec.user.Username)
		s.byName[*patch.Username] = id
		rec.user.Username = *patch.Username
	}
	if patch.Email != nil {
		rec.user.Email = *patch.Email
	}
	if patch.AvatarURL != nil {
		rec.user.AvatarURL = *patch.AvatarURL
	}
	now := s.clock.Now().UTC()
	rec.user.UpdatedAt = &now
	user := rec.user
	s.mu.Unlock()

	c.JSON(http.StatusOK, user)
}

func (s *Server) getAccount(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	account, ok := s.accounts[id]
	rec := s.users[c.GetString(userIDKey)]
	owned := ok && rec != nil && rec.accountID == id
	s.mu.Unlock()

	switch {
	case !ok:
		abort(c, http.StatusNotFound, "Account not found")
	case !owned:
		abort(c, http.StatusForbidden, "Forbidden")
	default:
		c.JSON(http.StatusOK, account)
	}
}

// AccountFor returns the personal account id of a user.
func (s *Server) AccountFor(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return "", false
	}
	return rec.accountID, true
}
