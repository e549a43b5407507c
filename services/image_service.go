package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/utils"
)

// ImageService stores property images and turns stored keys into URLs
type ImageService interface {
	// UploadImage validates and stores an image for propertyID, returning its storage key
	UploadImage(ctx context.Context, propertyID uint, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL returns a URL a client can fetch the image from
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

var imageServiceInstance ImageService

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// ImageResolver adapts an ImageService to the resolver used by response mapping.
// Keys that cannot be resolved are returned unchanged.
func ImageResolver(ctx context.Context, images ImageService) func(string) string {
	if images == nil {
		return nil
	}
	return func(key string) string {
		url, err := images.GetImageURL(ctx, key)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to resolve image URL")
			return key
		}
		return url
	}
}

// S3ImageService implements ImageService on top of S3
type S3ImageService struct {
	s3Service S3Interface
}

// InitImageService initializes the image service with an S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = &S3ImageService{s3Service: s3Service}
	return imageServiceInstance
}

// UploadImage validates and uploads an image under properties/<id>/
func (s *S3ImageService) UploadImage(ctx context.Context, propertyID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	contentType, _ := utils.ImageContentType(fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("properties/%d/%s", propertyID, utils.UniqueFilename(fileHeader.Filename))
	if err := s.s3Service.PutObject(ctx, key, contentType, file); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}
	if err := s.s3Service.DeleteObject(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// LocalImageService keeps images on local disk and serves them from /api/uploads
type LocalImageService struct {
	dir string
}

// InitLocalImageService initializes the image service with a local directory backend
func InitLocalImageService(dir string) ImageService {
	utils.UploadDir = dir
	imageServiceInstance = &LocalImageService{dir: dir}
	return imageServiceInstance
}

// UploadImage validates and saves an image, returning its filename
func (s *LocalImageService) UploadImage(ctx context.Context, propertyID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.dir)
	if err != nil {
		return "", err
	}

	logger.Ctx(ctx).Debug().Uint(logger.FieldPropertyID, propertyID).Str("file", filename).Msg("image saved locally")
	return filename, nil
}

// GetImageURL returns the API path that serves the file
func (s *LocalImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	return utils.GetImageURL(imageKey), nil
}

// DeleteImage removes the file, ignoring files that are already gone
func (s *LocalImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if !utils.IsSafeFilename(imageKey) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, imageKey))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
