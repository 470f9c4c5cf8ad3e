package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bpay/bpay/internal/common"
)

const (
	msgRunning       = "B-Pay is running"
	msgUserExists    = "User already exists"
	msgUserNotFound  = "User not found"
	msgInvalidCreds  = "Invalid credentials"
	msgInternal      = "Internal server error"
	msgInvalidBody   = "Invalid request body"
	msgMissingFields = "email and pin are required"
	msgPinTooLong    = "pin must be at most 72 bytes"
	msgPayloadObject = "payload must be a JSON object"
	msgUnauthorized  = "Unauthorized"
	msgForbidden     = "Forbidden"
	maxPinBytes      = 72
)

// pinValue accepts a PIN sent either as a JSON string or a JSON number.
type pinValue string

func (p *pinValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = pinValue(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return errors.New("pin must be a string or number")
	}
	*p = pinValue(n.String())
	return nil
}

type registerRequest struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Pin   pinValue `json:"pin"`
	Role  string   `json:"role"`
}

type loginRequest struct {
	Email string   `json:"email"`
	Pin   pinValue `json:"pin"`
}

type userView struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *HTTPServer) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, msgRunning)
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) handleIssueToken(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgPayloadObject})
		return
	}

	token, err := s.users.IssueToken(c.Request.Context(), payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
		return
	}

	s.metrics.tokenIssued(tokenPathDirect)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}
	if msg := validateCredentials(req.Email, string(req.Pin)); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	u, err := s.users.Register(c.Request.Context(), req.Name, req.Email, string(req.Pin), req.Role)
	switch {
	case err == nil:
		s.metrics.registration(outcomeCreated)
		c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": u.ID})
	case errors.Is(err, common.ErrorAlreadyExists):
		s.metrics.registration(outcomeDuplicate)
		c.JSON(http.StatusOK, gin.H{"message": msgUserExists, "insertedId": nil})
	case errors.Is(err, common.ErrorValidation):
		s.metrics.registration(outcomeInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"message": msgMissingFields})
	default:
		s.metrics.registration(outcomeError)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	}
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}
	if msg := validateCredentials(req.Email, string(req.Pin)); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Email, string(req.Pin))
	switch {
	case err == nil:
		s.metrics.login(outcomeSuccess)
		s.metrics.tokenIssued(tokenPathLogin)
		c.JSON(http.StatusOK, gin.H{"token": token})
	case errors.Is(err, common.ErrorUserNotFound):
		s.metrics.login(outcomeUnknownUser)
		msg := msgUserNotFound
		if s.unifyLoginErrors {
			msg = msgInvalidCreds
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
	case errors.Is(err, common.ErrorInvalidCredentials):
		s.metrics.login(outcomeWrongPin)
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidCreds})
	default:
		s.metrics.login(outcomeError)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	}
}

func (s *HTTPServer) handleListUsers(c *gin.Context) {
	list, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
		return
	}

	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	c.JSON(http.StatusOK, out)
}

// validateCredentials returns a client-facing message, or "" when the
// input is acceptable. bcrypt ignores bytes past 72, so longer PINs are
// refused instead of silently truncated.
func validateCredentials(email, pin string) string {
	if strings.TrimSpace(email) == "" || pin == "" {
		return msgMissingFields
	}
	if len(pin) > maxPinBytes {
		return msgPinTooLong
	}
	return ""
}
