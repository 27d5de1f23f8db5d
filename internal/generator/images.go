package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxImageBytes bounds a single poster or thumbnail download.
const maxImageBytes = 20 << 20

type imageSignature struct {
	ext    string
	offset int
	magic  []byte
}

var imageSignatures = []imageSignature{
	{".jpg", 0, []byte{0xFF, 0xD8, 0xFF}},
	{".png", 0, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}},
	{".gif", 0, []byte("GIF87a")},
	{".gif", 0, []byte("GIF89a")},
	{".webp", 8, []byte("WEBP")},
}

// DetectImage returns the file extension matching data's signature.
func DetectImage(data []byte) (string, bool) {
	for _, sig := range imageSignatures {
		end := sig.offset + len(sig.magic)
		if len(data) < end || !bytes.Equal(data[sig.offset:end], sig.magic) {
			continue
		}
		if sig.ext == ".webp" && !bytes.HasPrefix(data, []byte("RIFF")) {
			continue
		}
		return sig.ext, true
	}
	return "", false
}

// fetchImage downloads url and validates that it is an image.
func (g *Generator) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.imageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image %s: larger than %d bytes", url, maxImageBytes)
	}

	ext, ok := DetectImage(data)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidImage, url)
	}
	return data, ext, nil
}
