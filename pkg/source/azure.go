package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/xpttools/xpt/pkg/types"
)

// AzureClient interface for blob downloads (allows mocking in tests).
type AzureClient interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureFetcher reads azblob://account/container/blob locations.
type AzureFetcher struct {
	client           AzureClient // nil means create a client per account
	connectionString string
	MaxSize          int64
}

// NewAzureFetcher creates an Azure Blob Storage fetcher. With an empty
// connection string, anonymous access to public containers is used.
func NewAzureFetcher(connectionString string) *AzureFetcher {
	return &AzureFetcher{connectionString: connectionString, MaxSize: DefaultMaxSize}
}

// NewAzureFetcherWithClient creates a fetcher with a custom client (for testing).
func NewAzureFetcherWithClient(client AzureClient) *AzureFetcher {
	return &AzureFetcher{client: client, MaxSize: DefaultMaxSize}
}

// Name returns the fetcher name.
func (f *AzureFetcher) Name() string {
	return "azure-blob"
}

// CanFetch returns true for azblob:// URLs.
func (f *AzureFetcher) CanFetch(location string) bool {
	return scheme(location) == "azblob"
}

// parseAzureLocation splits "azblob://account/container/path/to/blob".
func parseAzureLocation(location string) (account, container, blob string, err error) {
	account, rest, ok := strings.Cut(location[len("azblob://"):], "/")
	if !ok || account == "" {
		return "", "", "", fmt.Errorf("expected azblob://<account>/<container>/<blob>, got %q", location)
	}
	container, blob, err = splitBucketKey(rest)
	if err != nil {
		return "", "", "", err
	}
	return account, container, blob, nil
}

func (f *AzureFetcher) clientFor(account string) (AzureClient, error) {
	if f.client != nil {
		return f.client, nil
	}
	if f.connectionString != "" {
		client, err := azblob.NewClientFromConnectionString(f.connectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		return client, nil
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Fetch downloads the blob.
func (f *AzureFetcher) Fetch(ctx context.Context, location string) (*Object, error) {
	account, container, blob, err := parseAzureLocation(location)
	if err != nil {
		return nil, err
	}
	client, err := f.clientFor(account)
	if err != nil {
		return nil, err
	}

	resp, err := client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", location, err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, f.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return &Object{Content: data, Provenance: types.RemoteProvenance{URL: location}}, nil
}
