package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUploadRouter(t *testing.T) (*gin.Engine, string) {
	tmpDir := t.TempDir()
	original := utils.UploadDir
	utils.UploadDir = tmpDir
	t.Cleanup(func() { utils.UploadDir = original })

	router := setupTestRouter()
	router.GET("/uploads/:filename", GetUploadedImage)
	return router, tmpDir
}

func TestGetUploadedImage_Success(t *testing.T) {
	router, tmpDir := setupUploadRouter(t)

	testCases := []struct {
		filename    string
		contentType string
	}{
		{"front.png", "image/png"},
		{"kitchen.jpg", "image/jpeg"},
		{"garden.JPEG", "image/jpeg"},
		{"hall.webp", "image/webp"},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			content := []byte("fake image " + tc.filename)
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, tc.filename), content, 0644))

			req := httptest.NewRequest("GET", "/uploads/"+tc.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
			assert.Equal(t, content, w.Body.Bytes())
		})
	}
}

func TestGetUploadedImage_FileNotFound(t *testing.T) {
	router, _ := setupUploadRouter(t)

	req := httptest.NewRequest("GET", "/uploads/nonexistent.png", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "FILE_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "Image not found")
}

func TestGetUploadedImage_EmptyFilename(t *testing.T) {
	router, _ := setupUploadRouter(t)

	req := httptest.NewRequest("GET", "/uploads/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// no route matches an empty parameter
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUploadedImage_DirectoryTraversal(t *testing.T) {
	router, _ := setupUploadRouter(t)

	testCases := []struct {
		name           string
		filename       string
		expectedStatus int
		expectedError  string
	}{
		// Gin treats slashes as separators, so these never reach the handler
		{"Parent directory traversal", "../../../etc/passwd", http.StatusNotFound, ""},
		{"Forward slash in filename", "path/to/file.png", http.StatusNotFound, ""},

		{"Backslash in filename", "path\\to\\file.png", http.StatusBadRequest, "INVALID_FILENAME"},
		{"Dots in filename", "..file.png", http.StatusBadRequest, "INVALID_FILENAME"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/uploads/"+tc.filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedError != "" {
				assert.Contains(t, w.Body.String(), tc.expectedError)
			}
		})
	}
}

func TestGetUploadedImage_InvalidFileType(t *testing.T) {
	router, _ := setupUploadRouter(t)

	for _, filename := range []string{"image.gif", "image", "document.txt", "archive.zip"} {
		t.Run(filename, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/uploads/"+filename, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
		})
	}
}
