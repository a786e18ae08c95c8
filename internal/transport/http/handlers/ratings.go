package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// RatingHandler serves post-event ratings. All routes hang off the events
// group because a rating is keyed by event and rater.
type RatingHandler struct {
	ratings *usecase.RatingService
}

// NewRatingHandler builds the handler.
func NewRatingHandler(ratings *usecase.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// RatingSubmitRequest defines the payload for submitting a rating.
type RatingSubmitRequest struct {
	Content      int     `json:"content" binding:"required"`
	Organization int     `json:"organization" binding:"required"`
	Venue        int     `json:"venue" binding:"required"`
	Comment      *string `json:"comment"`
}

// RatingEditRequest defines the partial update payload for an own rating.
type RatingEditRequest struct {
	Content      *int    `json:"content"`
	Organization *int    `json:"organization"`
	Venue        *int    `json:"venue"`
	Comment      *string `json:"comment"`
}

func (h *RatingHandler) Submit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RatingSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "content, organization and venue scores are required"))
		return
	}

	input := usecase.SubmitRatingInput{
		EventID: c.Param("id"),
		Scores: domain.RatingScores{
			Content:      req.Content,
			Organization: req.Organization,
			Venue:        req.Venue,
		},
	}
	if req.Comment != nil {
		input.Comment = *req.Comment
	}

	rating, err := h.ratings.SubmitRating(c.Request.Context(), actor, input)
	if err != nil {
		respondWorkflowError(c, err, "failed to submit rating",
			ErrorCase{Err: usecase.ErrNotEligible, Status: http.StatusForbidden, Message: "rating window is closed for this user"})
		return
	}

	c.JSON(http.StatusCreated, toRatingPayload(rating))
}

func (h *RatingHandler) Edit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RatingEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid rating payload"))
		return
	}

	rating, err := h.ratings.EditRating(c.Request.Context(), actor, c.Param("id"), domain.RatingUpdate{
		Content:      req.Content,
		Organization: req.Organization,
		Venue:        req.Venue,
		Comment:      req.Comment,
	})
	if err != nil {
		respondWorkflowError(c, err, "failed to edit rating")
		return
	}

	c.JSON(http.StatusOK, toRatingPayload(rating))
}

func (h *RatingHandler) ListByEvent(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	ratings, err := h.ratings.ListRatings(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to list ratings")
		return
	}

	payloads := make([]RatingPayload, 0, len(ratings))
	for i := range ratings {
		payloads = append(payloads, toRatingPayload(&ratings[i]))
	}

	c.JSON(http.StatusOK, gin.H{"ratings": payloads})
}
