package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/NatiBytes/crispy-vison/pkg/models"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"
)

// AzureStore is a PreviewStore backed by Azure Blob Storage. Previews survive
// restarts and are addressable by absolute blob URL.
type AzureStore struct {
	client      *azblob.Client
	accountName string
	container   string
}

func NewAzureStore(accountName, accountKey, container string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureStore{client: client, accountName: accountName, container: container}, nil
}

// Save uploads the preview and returns its absolute blob URL.
func (s *AzureStore) Save(ctx context.Context, buf models.ImageBuffer) (string, error) {
	blobName := uuid.NewString() + path.Ext(buf.Name)

	_, err := s.client.UploadBuffer(ctx, s.container, blobName, buf.Data, nil)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, s.container, blobName), nil
}

// Open downloads a previously saved preview by blob name.
func (s *AzureStore) Open(ctx context.Context, id string) (models.ImageBuffer, error) {
	downloadResponse, err := s.client.DownloadStream(ctx, s.container, id, nil)
	if err != nil {
		return models.ImageBuffer{}, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, err := io.ReadAll(retryReader)
	if err != nil {
		return models.ImageBuffer{}, fmt.Errorf("download failed: %w", err)
	}

	contentType := ""
	if downloadResponse.ContentType != nil {
		contentType = *downloadResponse.ContentType
	}
	return models.ImageBuffer{Name: id, ContentType: contentType, Data: data}, nil
}
