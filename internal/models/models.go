// Package models defines the persistent entities of the platform.
package models

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a platform account
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	Role           string    `gorm:"not null;default:user" json:"role"`
	IsBanned       bool      `gorm:"not null;default:false" json:"isBanned"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Follow is a follower -> followee edge
type Follow struct {
	FollowerID  uint `gorm:"primaryKey" json:"followerId"`
	FollowingID uint `gorm:"primaryKey" json:"followingId"`
}

// Post is a feed entry
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Image     string    `gorm:"not null" json:"image"`
	Caption   string    `gorm:"type:text" json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like marks a user liking a post
type Like struct {
	UserID uint `gorm:"primaryKey" json:"userId"`
	PostID uint `gorm:"primaryKey" json:"postId"`
}

// Comment belongs to a post
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null" json:"userId"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a direct message between two users. Records are immutable once
// written; removal happens only through the message store's delete.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"senderId"`
	ReceiverID uint      `gorm:"not null;index" json:"receiverId"`
	Content    string    `gorm:"not null;type:text" json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublicUser is the wire shape of a user plus live presence status
type PublicUser struct {
	User
	Status string `json:"status"`
}

// UserProfile is a user with social counters
type UserProfile struct {
	User
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
	Status         string `json:"status"`
}

// PostWithDetails is a post joined with its author and counters
type PostWithDetails struct {
	Post
	User          User  `json:"user"`
	LikesCount    int64 `json:"likesCount"`
	CommentsCount int64 `json:"commentsCount"`
	IsLiked       bool  `json:"isLiked"`
}

// CommentWithUser is a comment joined with its author
type CommentWithUser struct {
	Comment
	User User `json:"user"`
}
