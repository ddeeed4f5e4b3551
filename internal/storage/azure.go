package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/sirupsen/logrus"
)

// AzureUploader copies export artifacts to Azure Blob Storage
type AzureUploader struct {
	client        *azblob.Client
	containerName string
}

// Ensure AzureUploader implements Uploader
var _ Uploader = (*AzureUploader)(nil)

// NewAzureUploader creates an uploader using the default credential chain
func NewAzureUploader(accountName, containerName string) (*AzureUploader, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
	client, err := azblob.NewClient(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	uploader := &AzureUploader{
		client:        client,
		containerName: containerName,
	}

	if err := uploader.ensureContainer(); err != nil {
		return nil, fmt.Errorf("failed to ensure container exists: %w", err)
	}

	return uploader, nil
}

func (u *AzureUploader) ensureContainer() error {
	ctx := context.Background()

	_, err := u.client.CreateContainer(ctx, u.containerName, nil)
	if err != nil {
		if !strings.Contains(err.Error(), "ContainerAlreadyExists") {
			return fmt.Errorf("failed to create container: %w", err)
		}
		logrus.Debugf("Container %s already exists", u.containerName)
	} else {
		logrus.Infof("Created container %s", u.containerName)
	}

	return nil
}

// Upload copies one export artifact into the configured container
func (u *AzureUploader) Upload(name string, data []byte) error {
	ctx := context.Background()

	_, err := u.client.UploadBuffer(ctx, u.containerName, name, data, &azblob.UploadBufferOptions{
		BlockSize:   int64(1024 * 1024),
		Concurrency: 3,
	})

	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", name, err)
	}

	logrus.Infof("Uploaded %s to Azure Blob Storage", name)
	return nil
}
