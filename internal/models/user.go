package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string `json:"id" redis:"id"`
	Name         string `json:"name" redis:"name"`
	MobileNumber string `json:"mobile_number" redis:"mobile_number"`
	PINHash      string `json:"-" redis:"pin_hash"`
	Role         Role   `json:"role" redis:"role"`

	// OTP state for login / reset-password verification
	OTP          string `json:"-" redis:"otp"`
	OTPExpiresAt int64  `json:"-" redis:"otp_expires_at"`
	Verified     bool   `json:"verified" redis:"verified"`

	Active    bool  `json:"active" redis:"active"`
	CreatedAt int64 `json:"created_at" redis:"created_at"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}
