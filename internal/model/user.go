package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User はusersコレクションに保存されるログイン資格情報を表す。
// AUTH_MODE=credentials の場合のみ参照する。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}
