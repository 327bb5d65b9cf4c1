package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string  `json:"token"`
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	StoreID   *string `json:"store_id,omitempty"`
	ExpiresAt string  `json:"expires_at"`
}
