package service

import "errors"

var (
	// Виды ошибок бизнес-логики, handler сопоставляет их со статусами через errors.Is
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("access forbidden")
)

// Error ошибка бизнес-логики с текстом для клиента
type Error struct {
	kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.kind
}

var (
	ErrNoReviews       = &Error{kind: ErrNotFound, Detail: "There are no reviews"}
	ErrProductNotFound = &Error{kind: ErrNotFound, Detail: "Product not found"}
	ErrNoProduct       = &Error{kind: ErrNotFound, Detail: "There is no product found"}
	ErrNoUser          = &Error{kind: ErrNotFound, Detail: "There is no user found"}
	ErrNoReview        = &Error{kind: ErrNotFound, Detail: "There is no review found"}

	ErrNotCustomer = &Error{kind: ErrForbidden, Detail: "You must be customer user for this"}
	ErrNotAdmin    = &Error{kind: ErrForbidden, Detail: "You must be admin user for this"}
)
