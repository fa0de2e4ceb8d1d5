package shared

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding is sent by the HTTP clients in this module. Setting it by
// hand turns off net/http's transparent gzip handling, so ReadBody decodes
// both encodings.
const AcceptEncoding = "br, gzip"

// ReadBody reads a response body, undoing brotli or gzip content encoding.
func ReadBody(response *http.Response) ([]byte, error) {
	var reader io.Reader = response.Body

	switch strings.ToLower(strings.TrimSpace(response.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "br":
		reader = brotli.NewReader(response.Body)
	case "gzip":
		gzipReader, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", response.Header.Get("Content-Encoding"))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
