package reporting

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// Sink stores a rendered report under a name.
type Sink interface {
	Write(ctx context.Context, name string, data []byte, contentType string) error
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJUnit:
		return "application/xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileSink writes reports into a local directory.
type FileSink struct {
	Dir string
}

func (s *FileSink) Write(_ context.Context, name string, data []byte, _ string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	p := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// BlobSink uploads reports to an Azure Blob Storage container. Blob names
// are prefixed with the path found after the container in the URL.
type BlobSink struct {
	client    *azblob.Client
	container string
	prefix    string
}

// BlobSinkOptions configures NewBlobSink. Credential is used when the URL
// has no SAS token; it defaults to DefaultAzureCredential.
type BlobSinkOptions struct {
	Credential    azcore.TokenCredential
	ClientOptions *azblob.ClientOptions
}

// NewBlobSink parses a container URL such as
// https://acct.blob.core.windows.net/results/nightly?<sas>.
func NewBlobSink(rawURL string, opts BlobSinkOptions) (*BlobSink, error) {
	parts, err := azblob.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing blob URL: %w", err)
	}
	if parts.ContainerName == "" {
		return nil, fmt.Errorf("blob URL %q has no container", rawURL)
	}

	serviceURL := parts.Scheme + "://" + parts.Host + "/"
	var client *azblob.Client
	if sas := parts.SAS.Encode(); sas != "" {
		client, err = azblob.NewClientWithNoCredential(serviceURL+"?"+sas, opts.ClientOptions)
	} else {
		cred := opts.Credential
		if cred == nil {
			cred, err = azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("creating Azure credential: %w", err)
			}
		}
		client, err = azblob.NewClient(serviceURL, cred, opts.ClientOptions)
	}
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &BlobSink{
		client:    client,
		container: parts.ContainerName,
		prefix:    strings.Trim(parts.BlobName, "/"),
	}, nil
}

// BlobName returns the full blob name for a report name.
func (s *BlobSink) BlobName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *BlobSink) Write(ctx context.Context, name string, data []byte, contentType string) error {
	blobName := s.BlobName(name)
	_, err := s.client.UploadBuffer(ctx, s.container, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("uploading %s/%s: %w", s.container, blobName, err)
	}
	return nil
}

// NewSink returns a BlobSink for https URLs and a FileSink otherwise.
func NewSink(target string) (Sink, error) {
	if strings.HasPrefix(target, "https://") {
		return NewBlobSink(target, BlobSinkOptions{})
	}
	return &FileSink{Dir: target}, nil
}

// Publish renders reports in format and writes them to sink as
// "<name><ext>".
func Publish(ctx context.Context, sink Sink, name string, reports []*Report, format Format) error {
	var b strings.Builder
	if err := Render(&b, reports, format); err != nil {
		return err
	}
	return sink.Write(ctx, name+format.Extension(), []byte(b.String()), format.ContentType())
}
