package model

import "io"

// Upload is a file received from a multipart form, already opened by the
// handler.  Services hand it to object storage.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
