package models

type User struct {
	Username string `json:"username"`
}

// UserEnvelope is the body of GET /user/{id}.
type UserEnvelope struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
