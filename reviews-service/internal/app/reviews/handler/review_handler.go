package handler

import (
	"errors"
	"net/http"
	"strconv"

	"shopreviews/pkg/logger"
	"shopreviews/reviews-service/internal/app/reviews/entity"
	"shopreviews/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// ListAll GET /reviews/
func (h *ReviewHandler) ListAll(c *gin.Context) {
	reviews, err := h.reviewService.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ListForProduct GET /reviews/:product_slug
func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	reviews, err := h.reviewService.ListForProduct(c.Request.Context(), c.Param("product_slug"))
	if err != nil {
		h.respondError(c, err, "Failed to get product reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// Create POST /reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	role, ok := roleFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Detail: formatValidationError(err)})
		return
	}

	result, err := h.reviewService.Create(c.Request.Context(), role, req.ToNewReview())
	if err != nil {
		h.respondError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Delete DELETE /reviews/?review_id=N
func (h *ReviewHandler) Delete(c *gin.Context) {
	role, ok := roleFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	reviewID, err := strconv.ParseInt(c.Query("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Detail: "review_id must be an integer"})
		return
	}

	result, err := h.reviewService.Delete(c.Request.Context(), role, reviewID)
	if err != nil {
		h.respondError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondError: NotFound -> 404, Forbidden -> 403, остальное -> 500 с общим текстом
func (h *ReviewHandler) respondError(c *gin.Context, err error, internalDetail string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrForbidden):
			status = http.StatusForbidden
		}
		c.JSON(status, entity.ErrorResponse{Detail: svcErr.Detail})
		return
	}

	_ = c.Error(err)
	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg(internalDetail)
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Detail: internalDetail})
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
