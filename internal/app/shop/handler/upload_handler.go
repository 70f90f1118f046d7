package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"cedarcart/internal/app/shop/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Допустимые расширения файлов изображений
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadHandler обрабатывает загрузку изображений товаров
type UploadHandler struct {
	cfg config.UploadConfig
}

// NewUploadHandler создает новый обработчик загрузки файлов
func NewUploadHandler(cfg config.UploadConfig) *UploadHandler {
	return &UploadHandler{cfg: cfg}
}

// Upload обрабатывает POST /api/upload (только admin)
// Принимает изображение в поле image, сохраняет под случайным именем
// и возвращает путь для записи в карточку товара
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file required"})
		return
	}

	if file.Size > h.cfg.MaxSizeBytes() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File too large, max %d MB", h.cfg.MaxSizeMB),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Images only (jpg, jpeg, png, webp)"})
		return
	}

	// Случайное имя исключает коллизии и path traversal через имя файла
	filename := uuid.NewString() + ext
	dst := filepath.Join(h.cfg.Dir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"image": h.cfg.ServePrefix + "/" + filename,
	})
}
