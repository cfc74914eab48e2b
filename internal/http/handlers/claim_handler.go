package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/refind-app/refind-backend/internal/dto"
	"github.com/refind-app/refind-backend/internal/http/handlers/common"
	"github.com/refind-app/refind-backend/internal/service"
)

// ClaimHandler предоставляет HTTP слой для заявок на вещи.
type ClaimHandler struct {
	claims *service.ClaimService
}

// NewClaimHandler создаёт хэндлер.
func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// Create обрабатывает POST /claims.
func (h *ClaimHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		common.RespondBadRequest(c, "item_id должен быть валидным UUID")
		return
	}

	claim, err := h.claims.CreateClaim(c.Request.Context(), itemID, userID, req.RequestMessage)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// ListSent обрабатывает GET /claims/sent.
func (h *ClaimHandler) ListSent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	views, err := h.claims.ListSent(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": views})
}

// ListReceived обрабатывает GET /claims/received.
func (h *ClaimHandler) ListReceived(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	views, err := h.claims.ListReceived(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": views})
}

// Approve обрабатывает PUT /claims/:id/approve.
func (h *ClaimHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	claimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	view, err := h.claims.ApproveClaim(c.Request.Context(), claimID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Reject обрабатывает PUT /claims/:id/reject.
func (h *ClaimHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	claimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claim, err := h.claims.RejectClaim(c.Request.Context(), claimID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}
