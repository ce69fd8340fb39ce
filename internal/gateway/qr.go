package gateway

import qrcode "github.com/skip2/go-qrcode"

// RenderQR encodes a scan URL as a PNG image, sized for phone
// cameras at arm's length.
func RenderQR(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, 256)
}
