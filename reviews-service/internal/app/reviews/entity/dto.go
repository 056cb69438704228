package entity

// CreateReviewRequest тело POST /reviews/
// Поля-указатели нужны, чтобы отличить отсутствующее поле от нуля
type CreateReviewRequest struct {
	User    *int64  `json:"user" validate:"required"`
	Product *int64  `json:"product" validate:"required"`
	Comment *string `json:"comment"`
	Grade   *int    `json:"grade" validate:"required"`
}

// NewReview проверенные данные нового отзыва
type NewReview struct {
	UserID    int64
	ProductID int64
	Comment   *string
	Grade     int
}

// ToNewReview вызывается только после успешной валидации
func (r *CreateReviewRequest) ToNewReview() NewReview {
	return NewReview{
		UserID:    *r.User,
		ProductID: *r.Product,
		Comment:   r.Comment,
		Grade:     *r.Grade,
	}
}

// TransactionResponse подтверждение успешной операции записи
type TransactionResponse struct {
	StatusCode  int    `json:"status_code"`
	Transaction string `json:"transaction"`
}

// ErrorResponse стандартный ответ об ошибке
type ErrorResponse struct {
	Detail string `json:"detail"`
}
