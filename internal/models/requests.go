package models

import "time"

type RegisterRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber" binding:"required"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// UserResponse is the public view of a user record.
type UserResponse struct {
	UID            string `json:"uid"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	EmailAddress   string `json:"emailAddress"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	IsOnline       bool   `json:"isOnline"`
}

func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		UID:            u.UID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		EmailAddress:   u.EmailAddress,
		ProfilePicture: u.ProfilePicture,
		IsOnline:       u.IsOnline,
	}
}

// NearbyEvent is the payload published to the notification topic when
// a friend newly enters the user's radius.
type NearbyEvent struct {
	UserID     string    `json:"userId"`
	FriendUID  string    `json:"friendUid"`
	FriendName string    `json:"friendName"`
	EmittedAt  time.Time `json:"emittedAt"`
}

// StatusUpdate is broadcast when a user's presence changes.
type StatusUpdate struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}
