package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/refind-app/refind-backend/internal/http/handlers/common"
	"github.com/refind-app/refind-backend/internal/service"
	"github.com/refind-app/refind-backend/internal/storage"
)

// AdminHandler предоставляет HTTP слой административных операций.
type AdminHandler struct {
	admin   *service.AdminService
	items   *service.ItemService
	storage *storage.ImageStorage
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(admin *service.AdminService, items *service.ItemService, storage *storage.ImageStorage) *AdminHandler {
	return &AdminHandler{admin: admin, items: items, storage: storage}
}

// Stats обрабатывает GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.GetStats(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListUsers обрабатывает GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	users, err := h.admin.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// BanUser обрабатывает PUT /admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

// UnbanUser обрабатывает PUT /admin/users/:id/unban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *AdminHandler) setBanned(c *gin.Context, banned bool) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.admin.SetUserBanned(c.Request.Context(), userID, actorID, banned); err != nil {
		common.RespondAppError(c, err)
		return
	}

	message := "пользователь разблокирован"
	if banned {
		message = "пользователь заблокирован"
	}
	common.RespondSuccess(c, http.StatusOK, message, nil)
}

// DeleteItem обрабатывает DELETE /admin/items/:id.
// Администратор удаляет объявление через общий сервис объявлений.
func (h *AdminHandler) DeleteItem(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.DeleteItem(c.Request.Context(), itemID, actorID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if item.ImageURL != nil {
		_ = h.storage.Delete(c.Request.Context(), *item.ImageURL)
	}

	c.Status(http.StatusNoContent)
}
