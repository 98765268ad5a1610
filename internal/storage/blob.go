package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/rzdor/volleyball-analytics/internal/motionlog"
	"github.com/rzdor/volleyball-analytics/internal/trimerr"
)

// signedURLTTL is the default lifetime of a generated read URL
// (spec.md §4.H Remote blob variant).
const signedURLTTL = 60 * time.Minute

// BlobStorage persists artifacts to an Azure Blob container, behind
// the same Storage interface LocalStorage implements. Grounded on the
// azblob module named in other_examples/manifests (rendiffdev-ffprobe-api,
// cloudposse-atmos go.mod) — no source survived prep filtering, so the
// client/SAS call shapes follow the SDK's documented v1.x surface.
type BlobStorage struct {
	client        *azblob.Client
	cred          *azblob.SharedKeyCredential
	containerName string
	inputPrefix   string
	outputPrefix  string
	logger        motionlog.Logger

	readyOnce sync.Once
	readyErr  error
}

// NewBlob constructs a BlobStorage from an
// AZURE_STORAGE_CONNECTION_STRING-shaped connection string, the
// container name, and the input/output blob-name prefixes.
func NewBlob(connectionString, containerName, inputPrefix, outputPrefix string, logger motionlog.Logger) (*BlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, trimerr.NewStorageError("create blob client", err)
	}

	accountName, accountKey, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, trimerr.NewStorageError("parse connection string", err)
	}

	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, trimerr.NewStorageError("create shared key credential", err)
	}

	return &BlobStorage{
		client:        client,
		cred:          cred,
		containerName: containerName,
		inputPrefix:   inputPrefix,
		outputPrefix:  outputPrefix,
		logger:        logger,
	}, nil
}

// containerReady creates the container if it doesn't already exist.
// Awaited by every operation; idempotent under concurrency via
// sync.Once (spec.md §5).
func (s *BlobStorage) containerReady(ctx context.Context) error {
	s.readyOnce.Do(func() {
		_, err := s.client.CreateContainer(ctx, s.containerName, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			s.readyErr = err
		}
	})
	return s.readyErr
}

func (s *BlobStorage) LocalInputDir() string  { return "" }
func (s *BlobStorage) LocalOutputDir() string { return "" }

func (s *BlobStorage) SaveInput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.inputPrefix)
}

func (s *BlobStorage) SaveOutput(ctx context.Context, localPath, name string) (StoredVideo, error) {
	return s.save(ctx, localPath, name, s.outputPrefix)
}

func (s *BlobStorage) save(ctx context.Context, localPath, name, prefix string) (StoredVideo, error) {
	if err := s.containerReady(ctx); err != nil {
		return StoredVideo{}, trimerr.NewStorageError("ensure container", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return StoredVideo{}, trimerr.NewStorageError("open artifact for upload", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return StoredVideo{}, trimerr.NewStorageError("stat artifact", err)
	}

	blobName := blobKey(prefix, name)
	contentType := contentTypeFor(name)
	headers := azblob.BlobHTTPHeaders{BlobContentType: &contentType}
	_, err = s.client.UploadFile(ctx, s.containerName, blobName, f, &azblob.UploadFileOptions{
		HTTPHeaders: &headers,
	})
	if err != nil {
		return StoredVideo{}, trimerr.NewStorageError("upload artifact", err)
	}

	url, err := s.signedURL(blobName, false)
	if err != nil {
		return StoredVideo{}, err
	}

	return StoredVideo{
		Name:         name,
		URL:          url,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

func (s *BlobStorage) ListInputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(ctx, s.inputPrefix)
}

func (s *BlobStorage) ListOutputs(ctx context.Context) ([]StoredVideo, error) {
	return s.list(ctx, s.outputPrefix)
}

func (s *BlobStorage) list(ctx context.Context, prefix string) ([]StoredVideo, error) {
	if err := s.containerReady(ctx); err != nil {
		return nil, trimerr.NewStorageError("ensure container", err)
	}

	withSlash := prefix + "/"
	var out []StoredVideo

	pager := s.client.NewListBlobsFlatPager(s.containerName, &azblob.ListBlobsFlatOptions{
		Prefix: &withSlash,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, trimerr.NewStorageError("list blobs", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := strings.TrimPrefix(*item.Name, withSlash)
			var size int64
			var mod time.Time
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					mod = *item.Properties.LastModified
				}
			}
			url, err := s.signedURL(*item.Name, false)
			if err != nil {
				return nil, err
			}
			out = append(out, StoredVideo{Name: name, URL: url, Size: size, LastModified: mod})
		}
	}
	return out, nil
}

func (s *BlobStorage) OutputExists(ctx context.Context, name string) (bool, error) {
	if err := s.containerReady(ctx); err != nil {
		return false, trimerr.NewStorageError("ensure container", err)
	}

	blobClient := s.client.ServiceClient().NewContainerClient(s.containerName).NewBlobClient(blobKey(s.outputPrefix, name))
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, trimerr.NewStorageError("get blob properties", err)
	}
	return true, nil
}

func (s *BlobStorage) GetOutputURL(ctx context.Context, name string, asAttachment bool) (string, error) {
	if err := s.containerReady(ctx); err != nil {
		return "", trimerr.NewStorageError("ensure container", err)
	}
	return s.signedURL(blobKey(s.outputPrefix, name), asAttachment)
}

// signedURL generates a short-lived read URL for blobName. When
// asAttachment is true, the signature carries a content-disposition
// override forcing a download (spec.md §4.H).
func (s *BlobStorage) signedURL(blobName string, asAttachment bool) (string, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.containerName).NewBlobClient(blobName)

	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     time.Now().UTC().Add(-5 * time.Minute),
		ExpiryTime:    time.Now().UTC().Add(signedURLTTL),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: s.containerName,
		BlobName:      blobName,
	}
	if asAttachment {
		values.ContentDisposition = fmt.Sprintf(`attachment; filename="%s"`, blobNameToFile(blobName))
	}

	query, err := values.SignWithSharedKeyCredential(s.cred)
	if err != nil {
		return "", trimerr.NewStorageError("sign blob url", err)
	}

	return blobClient.URL() + "?" + query.Encode(), nil
}

func blobKey(prefix, name string) string {
	return prefix + "/" + name
}

func blobNameToFile(blobName string) string {
	if i := strings.LastIndexByte(blobName, '/'); i >= 0 {
		return blobName[i+1:]
	}
	return blobName
}

// parseConnectionString extracts AccountName and AccountKey from a
// semicolon-delimited Azure storage connection string (spec.md §6:
// "Must contain AccountName= and AccountKey= for signed URLs").
func parseConnectionString(cs string) (accountName, accountKey string, err error) {
	for _, part := range strings.Split(cs, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "AccountName":
			accountName = kv[1]
		case "AccountKey":
			accountKey = kv[1]
		}
	}
	if accountName == "" || accountKey == "" {
		return "", "", fmt.Errorf("connection string missing AccountName/AccountKey")
	}
	return accountName, accountKey, nil
}
