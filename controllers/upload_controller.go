package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/utils"
)

// GetUploadedImage handles GET /api/uploads/:filename - serves locally stored property images
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		respondBadRequest(c, "Filename is required")
		return
	}

	// Prevent directory traversal
	if !utils.IsSafeFilename(filename) {
		respondErrorCode(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := utils.ImageContentType(filename)
	if !ok {
		respondErrorCode(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Unsupported image type")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondErrorCode(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
