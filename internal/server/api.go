// ABOUTME: HTTP API handlers for contact submissions and the admin inbox
// ABOUTME: Maps store and gate errors to JSON responses without leaking details

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/2389/contact-inbox/internal/auth"
	"github.com/2389/contact-inbox/internal/store"
)

// Client-facing error messages.
const (
	errMsgFieldsRequired   = "Name, email, and message are required"
	errMsgSendFailed       = "Failed to send message"
	errMsgInvalidJSON      = "Invalid JSON body"
	errMsgInvalidCred      = "Invalid credential"
	errMsgNotConfigured    = "Admin password not configured"
	errMsgLoginFailed      = "Login failed"
	errMsgIDRequired       = "Message ID is required"
	errMsgInvalidID        = "Invalid message ID"
	errMsgFetchFailed      = "Failed to fetch messages"
	errMsgUpdateFailed     = "Failed to update message"
	errMsgDeleteFailed     = "Failed to delete message"
	errMsgMethodNotAllowed = "Method not allowed"
)

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// MarkReadRequest is the body of PATCH /api/admin/messages.
type MarkReadRequest struct {
	ID int64 `json:"id"`
}

// StatusResponse acknowledges a successful action.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// MessagesResponse is the body of GET /api/admin/messages.
type MessagesResponse struct {
	Messages    []*store.Message `json:"messages"`
	UnreadCount int              `json:"unread_count"`
}

// UnreadCountResponse is the body of GET /api/admin/messages/unread.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// handleContact handles POST /api/contact.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, errMsgInvalidJSON)
		return
	}

	if _, err := s.store.CreateMessage(r.Context(), req.Name, req.Email, req.Message); err != nil {
		if errors.Is(err, store.ErrValidation) {
			s.sendJSONError(w, http.StatusBadRequest, errMsgFieldsRequired)
			return
		}
		s.logger.Error("failed to save message", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgSendFailed)
		return
	}

	s.sendJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Message sent successfully"})
}

// handleLogin handles POST (login) and DELETE (logout) on /api/admin/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleLoginPost(w, r)
	case http.MethodDelete:
		s.handleLogout(w, r)
	default:
		s.methodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, errMsgInvalidJSON)
		return
	}

	session, err := s.gate.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		s.logger.Error("admin login attempted but no admin secret is configured")
		s.sendJSONError(w, http.StatusInternalServerError, errMsgNotConfigured)
		return
	case errors.Is(err, auth.ErrInvalidCredential):
		s.logger.Warn("admin login failed", "remote_addr", r.RemoteAddr)
		s.sendJSONError(w, http.StatusUnauthorized, errMsgInvalidCred)
		return
	case err != nil:
		s.logger.Error("admin login error", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgLoginFailed)
		return
	}

	auth.SetSessionCookie(w, r, session, s.config.Admin.SecureCookies)
	s.logger.Info("admin logged in", "remote_addr", r.RemoteAddr, "expires_at", session.ExpiresAt)
	s.sendJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Login successful"})
}

// handleLogout always succeeds: the token, if any, is revoked and the cookie cleared.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout(auth.SessionToken(r))
	auth.ClearSessionCookie(w, r, s.config.Admin.SecureCookies)
	s.sendJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Logged out successfully"})
}

// handleMessages dispatches /api/admin/messages by method.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListMessages(w, r)
	case http.MethodPatch:
		s.handleMarkRead(w, r)
	case http.MethodDelete:
		s.handleDeleteMessage(w, r)
	default:
		s.methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.ListMessages(r.Context())
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgFetchFailed)
		return
	}

	// Derived from the same snapshot so the badge always matches the list.
	unread := 0
	for _, m := range messages {
		if !m.Read {
			unread++
		}
	}

	s.sendJSON(w, http.StatusOK, MessagesResponse{Messages: messages, UnreadCount: unread})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, errMsgInvalidJSON)
		return
	}
	if req.ID <= 0 {
		s.sendJSONError(w, http.StatusBadRequest, errMsgIDRequired)
		return
	}

	if err := s.store.MarkMessageRead(r.Context(), req.ID); err != nil {
		s.logger.Error("failed to mark message read", "id", req.ID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgUpdateFailed)
		return
	}
	s.sendJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		s.sendJSONError(w, http.StatusBadRequest, errMsgIDRequired)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.sendJSONError(w, http.StatusBadRequest, errMsgInvalidID)
		return
	}

	if err := s.store.DeleteMessage(r.Context(), id); err != nil {
		s.logger.Error("failed to delete message", "id", id, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgDeleteFailed)
		return
	}
	s.sendJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// handleUnreadCount handles GET /api/admin/messages/unread.
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	count, err := s.store.CountUnreadMessages(r.Context())
	if err != nil {
		s.logger.Error("failed to count unread messages", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, errMsgFetchFailed)
		return
	}
	s.sendJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the message store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// sendJSON writes v as a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	s.sendJSONError(w, http.StatusMethodNotAllowed, errMsgMethodNotAllowed)
}
