package models

import "time"

// Group is a Discord guild moderated by the bot
type Group struct {
	ID       string    `bson:"id" json:"id"`
	Title    string    `bson:"title" json:"title"`
	JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
}
