package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"marketplace_admin/internal/domain/models"
)

type uploadResponse struct {
	Message string       `json:"mensaje"`
	Image   models.Asset `json:"imagen"`
}

type multipleUploadResponse struct {
	Message string         `json:"mensaje"`
	Images  []models.Asset `json:"imagenes"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody writes every file under the same form field, in order.
func multipartBody(field string, files []models.UploadFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func (c *Client) UploadImage(ctx context.Context, file models.UploadFile) (*models.Asset, error) {
	const op = "marketplace.Client.UploadImage"

	body, ct, err := multipartBody("file", []models.UploadFile{file})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp uploadResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		route:       "/upload/image",
		path:        "/upload/image",
		body:        body,
		contentType: ct,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &resp.Image, nil
}

// UploadImages sends all files in one multipart request; the backend answers
// with descriptors in input order.
func (c *Client) UploadImages(ctx context.Context, files []models.UploadFile) ([]models.Asset, error) {
	const op = "marketplace.Client.UploadImages"

	body, ct, err := multipartBody("files", files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp multipleUploadResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		route:       "/upload/images",
		path:        "/upload/images",
		body:        body,
		contentType: ct,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Images, nil
}

// DeleteUpload removes a stored asset. Public ids contain slashes
// ("folder/name"), so the id is escaped as a single segment.
func (c *Client) DeleteUpload(ctx context.Context, publicID string) error {
	const op = "marketplace.Client.DeleteUpload"

	err := c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/upload/:publicId",
		path:   "/upload/" + url.PathEscape(publicID),
	}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
