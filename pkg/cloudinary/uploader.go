package cloudinary

import (
	"bytes"
	"context"
	"errors"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func boolPtr(b bool) *bool {
	return &b
}

func (u *CloudinaryUploader) UploadBytes(ctx context.Context, folder string, filename string, b []byte) (string, error) {
	up, err := u.cld.Upload.Upload(ctx, bytes.NewReader(b), uploader.UploadParams{
		Folder:         folder,
		PublicID:       filename,
		ResourceType:   "image",
		UseFilename:    boolPtr(true),
		UniqueFilename: boolPtr(true),
		Overwrite:      boolPtr(false),
	})
	if err != nil {
		return "", err
	}
	if up.SecureURL == "" {
		return "", errors.New("upload returned no URL")
	}
	return up.SecureURL, nil
}
