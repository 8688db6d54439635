package middleware

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// supportedEncodings are the content codings decodeContent understands, in
// the order they are offered upstream.
var supportedEncodings = []string{"gzip", "deflate", "br"}

// errContentTooLarge is returned when a decoded response body exceeds the limit.
var errContentTooLarge = errors.New("decoded response body too large")

// decodeContent undoes the Content-Encoding of a buffered response body so
// the body can be checked against its schema. Codings are applied in the
// order listed, so they are removed from last to first. At most limit decoded
// bytes are accepted.
func decodeContent(contentEncoding string, data []byte, limit int64) ([]byte, error) {
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		if coding == "" || coding == "identity" || len(data) == 0 {
			continue
		}

		var (
			rd  io.Reader
			err error
		)
		switch coding {
		case "gzip", "x-gzip":
			rd, err = gzip.NewReader(bytes.NewReader(data))
		case "deflate":
			rd, err = deflateReader(data)
		case "br":
			rd = brotli.NewReader(bytes.NewReader(data))
		default:
			return nil, fmt.Errorf("unsupported content encoding %q", coding)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s response body: %w", coding, err)
		}

		decoded, err := io.ReadAll(io.LimitReader(rd, limit+1))
		if err != nil {
			return nil, fmt.Errorf("decoding %s response body: %w", coding, err)
		}
		if int64(len(decoded)) > limit {
			return nil, errContentTooLarge
		}
		data = decoded
	}
	return data, nil
}

// deflateReader reads HTTP "deflate", which is zlib-wrapped; some servers
// send a raw deflate stream instead.
func deflateReader(data []byte) (io.Reader, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		return zr, nil
	}
	return flate.NewReader(bytes.NewReader(data)), nil
}

// SupportedEncodings filters an Accept-Encoding header down to the codings a
// validating middleware can decode. It returns "identity" when none remain.
func SupportedEncodings(acceptEncoding string) string {
	var kept []string
	for _, part := range strings.Split(acceptEncoding, ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		for _, supported := range supportedEncodings {
			if coding == supported || (coding == "x-gzip" && supported == "gzip") {
				kept = append(kept, strings.TrimSpace(part))
			}
		}
	}
	if len(kept) == 0 {
		return "identity"
	}
	return strings.Join(kept, ", ")
}
