package models

import (
	"time"

	"proximity-service/pkg/geo"
)

// User is the per-user document in the record store. The six relation
// lists are denormalized across both members of every pair, so any
// mutation of them must touch two documents; only the relationship
// service is allowed to write them. The bson names are the wire schema
// the mobile clients already depend on -- do not rename.
type User struct {
	UID            string `bson:"_id" json:"uid"`
	FirstName      string `bson:"firstName" json:"firstName"`
	LastName       string `bson:"lastName" json:"lastName"`
	PhoneNumber    string `bson:"phoneNumber" json:"phoneNumber"`
	EmailAddress   string `bson:"emailAddress" json:"emailAddress"`
	PasswordHash   string `bson:"passwordHash" json:"-"`
	ProfilePicture string `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`

	LastKnownLocation *geo.Point `bson:"lastKnownLocation,omitempty" json:"lastKnownLocation,omitempty"`
	IsOnline          bool       `bson:"isOnline" json:"isOnline"`

	FriendsList        []string `bson:"friendsList" json:"friendsList"`
	FriendRequests     []string `bson:"friendRequests" json:"friendRequests"`
	SentFriendRequests []string `bson:"sentFriendRequests" json:"sentFriendRequests"`
	BlockedList        []string `bson:"blockedList" json:"blockedList"`
	LocationSharedWith []string `bson:"locationSharedWith" json:"locationSharedWith"`
	LocationSharedBy   []string `bson:"locationSharedBy" json:"locationSharedBy"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName is what notifications and friend lists show.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Contains reports whether uid is present in list.
func Contains(list []string, uid string) bool {
	for _, v := range list {
		if v == uid {
			return true
		}
	}
	return false
}

// Add returns list with uid appended if absent. Lists are small
// (hundreds at most), linear scans are fine.
func Add(list []string, uid string) []string {
	if Contains(list, uid) {
		return list
	}
	return append(list, uid)
}

// Remove returns list without uid, preserving order.
func Remove(list []string, uid string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != uid {
			out = append(out, v)
		}
	}
	return out
}
