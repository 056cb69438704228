package entity

import (
	"time"
)

// Review отзыв покупателя о товаре
// Удаление мягкое: IsActive = false, строка остаётся в таблице
type Review struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id" gorm:"not null;index"`
	ProductID   int64     `json:"product_id" gorm:"not null;index"`
	Comment     *string   `json:"comment" gorm:"type:text"`
	CommentDate Date      `json:"comment_date" gorm:"type:date"`
	Grade       int       `json:"grade" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
}

func (Review) TableName() string {
	return "reviews"
}

// Product товар каталога. Сервис отзывов меняет только Rating
type Product struct {
	ID     int64   `json:"id" gorm:"primaryKey"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug" gorm:"uniqueIndex"`
	Rating float64 `json:"rating"`
}

func (Product) TableName() string {
	return "products"
}

// User пользователь, проверяется только существование
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Username string `json:"username"`
}

func (User) TableName() string {
	return "users"
}

// Role права вызывающего, извлекаются из JWT токена
type Role struct {
	UserID     int64
	Username   string
	IsAdmin    bool
	IsSupplier bool
	IsCustomer bool
}

const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewDeleted = "REVIEW_DELETED"
)

// ReviewEvent событие для Kafka
type ReviewEvent struct {
	EventType     string    `json:"event_type"` // REVIEW_CREATED или REVIEW_DELETED
	ReviewID      int64     `json:"review_id"`
	ProductID     int64     `json:"product_id"`
	UserID        int64     `json:"user_id"`
	Grade         int       `json:"grade"`
	ProductRating *float64  `json:"product_rating,omitempty"` // только для REVIEW_CREATED
	Timestamp     time.Time `json:"timestamp"`
}
