package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/refind-app/refind-backend/internal/dto"
	"github.com/refind-app/refind-backend/internal/http/handlers/common"
	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/service"
	"github.com/refind-app/refind-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ItemHandler предоставляет HTTP слой для объявлений.
type ItemHandler struct {
	items   *service.ItemService
	storage *storage.ImageStorage
}

// NewItemHandler создаёт хэндлер.
func NewItemHandler(items *service.ItemService, storage *storage.ImageStorage) *ItemHandler {
	return &ItemHandler{items: items, storage: storage}
}

// List обрабатывает GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	// Каталог по умолчанию показывает только активные объявления;
	// status=all снимает фильтр.
	status := c.DefaultQuery("status", models.ItemStatusActive)
	if status == "all" {
		status = ""
	}

	filter := models.ItemFilter{
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Location: c.Query("location"),
		Status:   status,
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}

	items, total, err := h.items.ListItems(c.Request.Context(), filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  items,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Get обрабатывает GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.GetItem(c.Request.Context(), itemID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListMine обрабатывает GET /items/mine.
func (h *ItemHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	items, err := h.items.ListMyItems(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create обрабатывает POST /items (multipart форма с необязательным полем image).
func (h *ItemHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var imageURL *string
	if file, err := c.FormFile("image"); err == nil {
		relative, err := h.saveImage(c, userID, file)
		if err != nil {
			return // ответ уже отправлен
		}
		imageURL = &relative
	}

	item, err := h.items.CreateItem(c.Request.Context(), userID, service.CreateItemInput{
		Type:        req.Type,
		Title:       req.Title,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		ImageURL:    imageURL,
	})
	if err != nil {
		if imageURL != nil {
			_ = h.storage.Delete(c.Request.Context(), *imageURL)
		}
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Update обрабатывает PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
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

	var req dto.UpdateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.items.UpdateItem(c.Request.Context(), itemID, userID, role, service.UpdateItemInput{
		Type:        req.Type,
		Title:       req.Title,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		relative, err := h.saveImage(c, userID, file)
		if err != nil {
			return
		}
		old := item.ImageURL
		item, uerr := h.items.SetItemImage(c.Request.Context(), itemID, userID, role, &relative)
		if uerr != nil {
			_ = h.storage.Delete(c.Request.Context(), relative)
			common.RespondAppError(c, uerr)
			return
		}
		if old != nil {
			_ = h.storage.Delete(c.Request.Context(), *old)
		}
		c.JSON(http.StatusOK, item)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete обрабатывает DELETE /items/:id.
func (h *ItemHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
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

	item, err := h.items.DeleteItem(c.Request.Context(), itemID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if item.ImageURL != nil {
		_ = h.storage.Delete(c.Request.Context(), *item.ImageURL)
	}

	c.Status(http.StatusNoContent)
}

// saveImage валидирует и сохраняет файл изображения.
// При ошибке отправляет ответ и возвращает err.
func (h *ItemHandler) saveImage(c *gin.Context, userID uuid.UUID, file *multipart.FileHeader) (string, error) {
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return "", fmt.Errorf("empty file")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		common.RespondBadRequest(c, "неподдерживаемый формат файла. Разрешены: .jpg, .jpeg, .png, .gif, .webp")
		return "", fmt.Errorf("bad extension")
	}

	src, err := file.Open()
	if err != nil {
		common.RespondInternalError(c, "")
		return "", err
	}
	defer src.Close()

	// Проверяем магические байты (реальный тип файла)
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return "", err
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		common.RespondBadRequest(c, "разрешены только изображения")
		return "", fmt.Errorf("bad mime type")
	}

	// Расширение должно соответствовать реальному типу файла
	expectedExt := "." + kind.Extension
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		common.RespondBadRequest(c, fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt))
		return "", fmt.Errorf("extension mismatch")
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondInternalError(c, "")
			return "", err
		}
	}

	relative, _, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		common.RespondInternalError(c, "")
		return "", err
	}

	return filepath.ToSlash(relative), nil
}
