package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// decodedImage is one embedded image decoded from its data URL form.
type decodedImage struct {
	Format string
	Data   []byte
}

// decodeDataURL splits a data:image/...;base64 URL into its format and raw
// bytes. Signatures and photos arrive in this shape from the capture
// controls.
func decodeDataURL(raw string) (decodedImage, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:image/") {
		return decodedImage{}, fmt.Errorf("pdf: not an image data URL")
	}

	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return decodedImage{}, fmt.Errorf("pdf: malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return decodedImage{}, fmt.Errorf("pdf: data URL is not base64 encoded")
	}

	format := strings.TrimPrefix(strings.TrimSuffix(meta, ";base64"), "image/")
	switch format {
	case "png", "jpeg", "jpg", "gif":
	default:
		return decodedImage{}, fmt.Errorf("pdf: unsupported image format %q", format)
	}
	if format == "jpg" {
		format = "jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return decodedImage{}, fmt.Errorf("pdf: decode image payload: %w", err)
	}
	if len(data) == 0 {
		return decodedImage{}, fmt.Errorf("pdf: empty image payload")
	}
	// fpdf errors are sticky; verify the payload really is an image before
	// it reaches the document
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return decodedImage{}, fmt.Errorf("pdf: undecodable image payload: %w", err)
	}
	return decodedImage{Format: format, Data: data}, nil
}
