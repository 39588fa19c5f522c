package artifacts

import (
	"context"
	"fmt"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobSink uploads result files to an Azure Blob Storage container.
// Uploads are best-effort; callers log failures and move on.
type BlobSink struct {
	client    *azblob.Client
	container string
}

// NewBlobSink creates a sink for the given storage account service URL
// (e.g. https://myaccount.blob.core.windows.net) and container,
// authenticating with the default Azure credential chain.
func NewBlobSink(serviceURL, container string) (*BlobSink, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating azure credential: %w", err)
	}
	return newBlobSink(serviceURL, container, cred)
}

func newBlobSink(serviceURL, container string, cred azcore.TokenCredential) (*BlobSink, error) {
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &BlobSink{client: client, container: container}, nil
}

// Upload stores data under <runID>/<name> in the sink's container.
func (s *BlobSink) Upload(ctx context.Context, runID, name string, data []byte) error {
	blobName := path.Join(runID, name)
	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		return fmt.Errorf("uploading %s: %w", blobName, err)
	}
	return nil
}
