package user

import "time"

// UserResponse defines the response structure for user information.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
}
