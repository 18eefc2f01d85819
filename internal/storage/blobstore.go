package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/Luiggi-Git/carocha-functions/internal/credential"
)

const applicationID = "photogate"

// blobStore implements ObjectStore backed by one Azure Blob Storage container
type blobStore struct {
	client    *azblob.Client
	container string
}

// NewBlobStore creates an ObjectStore authenticated with the account shared
// key. The pipeline does not retry: a failed call is reported to the caller
// as is.
func NewBlobStore(cred credential.StoreCredential, containerName string) (ObjectStore, error) {
	if containerName == "" {
		return nil, fmt.Errorf("blob container is required")
	}
	key, err := azblob.NewSharedKeyCredential(cred.Identity, cred.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("could not create shared key credential for account %s", cred.Identity)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(cred.ServiceURL()+"/", key, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: -1},
			Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create blob client: %w", err)
	}
	return &blobStore{client: client, container: containerName}, nil
}

func isNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}

func (s *blobStore) List(ctx context.Context) ([]ObjectInfo, error) {
	slog.Debug("Listing blobs", "container", s.container)

	var out []ObjectInfo
	pager := s.client.NewListBlobsFlatPager(s.container, nil)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			slog.Error("Failed to list blobs", "container", s.container, "error", err)
			return nil, err
		}
		if resp.Segment == nil {
			continue
		}
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			info := ObjectInfo{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			out = append(out, info)
		}
	}

	slog.Debug("Listed blobs", "container", s.container, "count", len(out))
	return out, nil
}

func (s *blobStore) Exists(ctx context.Context, name string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name)

	_, err := blobClient.GetProperties(ctx, nil)
	if isNotFound(err) {
		slog.Debug("Blob not found", "container", s.container, "path", name)
		return false, nil
	}
	if err != nil {
		slog.Error("Failed to get blob properties", "container", s.container, "path", name, "error", err)
		return false, err
	}
	return true, nil
}

func (s *blobStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, name, nil)
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		slog.Error("Unable to delete blob", "container", s.container, "path", name, "error", err)
		return err
	}

	slog.Info("Deleted blob", "container", s.container, "path", name)
	return nil
}
