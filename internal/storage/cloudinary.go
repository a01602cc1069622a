package storage

import (
	"context"
	"io"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const productFolder = "shopshere/products"

// ImageStore wraps the cloudinary uploader for product images.
type ImageStore struct {
	client *cloudinary.Cloudinary
}

func NewImageStore(cloudName, apiKey, apiSecret string) (*ImageStore, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &ImageStore{client: client}, nil
}

// UploadedImage mirrors what gets persisted on the product document.
type UploadedImage struct {
	PublicID string
	URL      string
}

func (s *ImageStore) Upload(ctx context.Context, file io.Reader) (UploadedImage, error) {
	result, err := s.client.Upload.Upload(ctx, file, uploader.UploadParams{Folder: productFolder})
	if err != nil {
		return UploadedImage{}, err
	}
	return UploadedImage{PublicID: result.PublicID, URL: result.SecureURL}, nil
}

// Destroy removes an uploaded image. Failures are logged, not propagated:
// a missing remote image must not block a product delete.
func (s *ImageStore) Destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if _, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		log.Println("[STORAGE] [ERROR] destroy failed for", publicID, ":", err)
	}
}
