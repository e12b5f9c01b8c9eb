package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// All logos live under one logical folder at the provider.
const cloudinaryFolder = "tv-logos"

// CloudinaryCredentials is the account configuration for the hosted media
// API: cloud name, API key and API secret.
type CloudinaryCredentials struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Cloudinary is a Backend for the Cloudinary hosted media API.
// Credentials are resolved per call so that configuration written through
// the setup form takes effect without a restart.
type Cloudinary struct {
	// Credentials yields the current account settings. The second return
	// value reports whether the backend is configured at all.
	Credentials func() (CloudinaryCredentials, bool)

	// UploadPrefix overrides the provider API endpoint, used by tests.
	UploadPrefix string
}

// NewCloudinary creates a Cloudinary backend drawing credentials from creds.
func NewCloudinary(creds func() (CloudinaryCredentials, bool)) *Cloudinary {
	return &Cloudinary{Credentials: creds}
}

// client builds an SDK client for the current credentials. Building one
// per call keeps hot-reloaded credentials in effect without a restart.
func (c *Cloudinary) client() (*cloudinary.Cloudinary, error) {
	creds, ok := c.Credentials()
	if !ok {
		return nil, fmt.Errorf("media provider is not configured")
	}

	cld, err := cloudinary.NewFromParams(creds.CloudName, creds.APIKey, creds.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create media API client: %w", err)
	}
	if c.UploadPrefix != "" {
		// NewFromConfiguration copies the config by value into the sub-APIs,
		// so the override must be applied to the uploader's copy as well.
		cld.Config.API.UploadPrefix = c.UploadPrefix
		cld.Upload.Config.API.UploadPrefix = c.UploadPrefix
	}
	return cld, nil
}

func (c *Cloudinary) Put(ctx context.Context, _ string, data []byte) (Object, error) {
	cld, err := c.client()
	if err != nil {
		return Object{}, err
	}

	resp, err := cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder: cloudinaryFolder,
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload to media API: %w", err)
	}
	if resp.Error.Message != "" {
		return Object{}, fmt.Errorf("media API rejected upload: %s", resp.Error.Message)
	}

	return Object{URL: resp.SecureURL, Key: resp.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, obj Object) error {
	if obj.Key == "" {
		return nil
	}

	cld, err := c.client()
	if err != nil {
		return err
	}

	resp, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: obj.Key})
	if err != nil {
		return fmt.Errorf("destroy at media API: %w", err)
	}

	// "not found" means the remote copy is already gone, which is fine.
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("provider rejected deletion: %s", resp.Result)
	}
	return nil
}

func (c *Cloudinary) Resolve(ctx context.Context, obj Object) ([]byte, error) {
	if obj.URL == "" {
		return nil, fmt.Errorf("object has no delivery URL")
	}
	return fetchURL(ctx, obj.URL)
}
