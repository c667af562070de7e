package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "")
		return
	}

	u, err := s.svc.Users.Register(r.Context(), services.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(newUserResponse(u)).Write(w)
}

// handleLogin accepts JSON or form-encoded credentials.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		UnprocessableEntityError("Invalid request body").Write(w)
		return
	}

	username, password := parser.Get("username"), parser.Get("password")
	if username == "" || password == "" {
		writeError(w, r, core.NewValidationError("username", "username and password are required"), "")
		return
	}

	token, err := s.svc.Users.Login(r.Context(), username, password)
	if err != nil {
		writeError(w, r, err, "")
		return
	}

	NewResponse().JSON(tokenResponse{AccessToken: token, TokenType: "bearer"}).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(newUserResponse(currentUser(r))).Write(w)
}

// handleDeleteMe removes the account together with all of its records.
func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Delete(r.Context(), currentUser(r).ID); err != nil {
		writeError(w, r, err, "User not found")
		return
	}
	NoContent().Write(w)
}
