package orderserver

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse answers a login. Token is null when the credentials were rejected.
type AuthResponse struct {
	Token   *string `json:"token"`
	Message string  `json:"message"`
}

// ValidationResponse answers a token validation.
type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"subject,omitempty"`
}
