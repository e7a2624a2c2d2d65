package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/homebasehq/homebase/panel"
)

// Item is anything with a server-assigned identifier.
type Item interface {
	ItemID() string
}

// Resources plug straight into panel contexts; the panel package sees
// this client only through its own interfaces.
var (
	_ panel.ItemClient[Note] = (*Resource[Note])(nil)
	_ panel.FieldErrorer     = (*APIError)(nil)
)

// Resource is a typed CRUD client for one plugin's collection. All
// resources share the same envelope decoding and error mapping.
type Resource[T Item] struct {
	c    *Client
	path string
}

// List fetches the caller's full collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out struct {
		Data []T `json:"data"`
	}
	if err := r.c.doJSON(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Create persists a new item and returns the server's copy.
func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var out struct {
		Data T `json:"data"`
	}
	if err := r.c.doJSON(ctx, http.MethodPost, r.path, item, &out); err != nil {
		var zero T
		return zero, err
	}
	return out.Data, nil
}

// Update replaces an existing item and returns the server's copy.
func (r *Resource[T]) Update(ctx context.Context, item T) (T, error) {
	var out struct {
		Data T `json:"data"`
	}
	if err := r.c.doJSON(ctx, http.MethodPut, r.path+"/"+item.ItemID(), item, &out); err != nil {
		var zero T
		return zero, err
	}
	return out.Data, nil
}

// Delete removes an item by ID.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, http.MethodDelete, r.path+"/"+id, nil, nil)
}

// Contacts returns the contacts resource client.
func (c *Client) Contacts() *Resource[Contact] {
	return &Resource[Contact]{c: c, path: "/api/contacts"}
}

// Notes returns the notes resource client.
func (c *Client) Notes() *Resource[Note] {
	return &Resource[Note]{c: c, path: "/api/notes"}
}

// Tasks returns the tasks resource client.
func (c *Client) Tasks() *Resource[Task] {
	return &Resource[Task]{c: c, path: "/api/tasks"}
}

// Estimates returns the estimates resource client.
func (c *Client) Estimates() *Resource[Estimate] {
	return &Resource[Estimate]{c: c, path: "/api/estimates"}
}

// Invoices returns the invoices resource client.
func (c *Client) Invoices() *Resource[Invoice] {
	return &Resource[Invoice]{c: c, path: "/api/invoices"}
}

// Products returns the products resource client.
func (c *Client) Products() *Resource[Product] {
	return &Resource[Product]{c: c, path: "/api/products"}
}

// Files returns the files resource client. Uploads go through
// UploadFiles; this resource covers listing, renames, and deletes.
func (c *Client) Files() *Resource[FileItem] {
	return &Resource[FileItem]{c: c, path: "/api/files"}
}

// Channels returns the channels resource client.
func (c *Client) Channels() *Resource[Channel] {
	return &Resource[Channel]{c: c, path: "/api/channels"}
}

// ---- Auth ----

// Login authenticates with email and password. On success the session
// cookie is stored in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Data struct {
			User User `json:"user"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out.Data.User, nil
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the currently authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		Data struct {
			User User `json:"user"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data.User, nil
}

// ---- Files ----

// Upload is one file to send to UploadFiles.
type Upload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadFiles sends files as a multipart request and returns the stored
// metadata. Server-side limits apply per file and per request.
func (c *Client) UploadFiles(ctx context.Context, uploads ...Upload) ([]FileItem, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, up := range uploads {
		part, err := mw.CreateFormFile("files", up.Name)
		if err != nil {
			return nil, fmt.Errorf("building multipart body: %w", err)
		}
		if _, err := io.Copy(part, up.Reader); err != nil {
			return nil, fmt.Errorf("reading upload %q: %w", up.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.buildRequest(ctx, http.MethodPost, "/api/files/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Data []FileItem `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// DownloadFile streams a stored file's bytes. The caller must close the
// reader. The returned string is the server's content type.
func (c *Client) DownloadFile(ctx context.Context, storedName string) (io.ReadCloser, string, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, "/api/files/raw/"+storedName, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("performing request: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, "", decodeError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// ---- Channels ----

// ExportChannel pushes the caller's products to the channel and returns
// the export summary.
func (c *Client) ExportChannel(ctx context.Context, channelID string) (*ExportSummary, error) {
	var out struct {
		Data ExportSummary `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/channels/"+channelID+"/export", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ---- Invoice import ----

// PreviewInvoiceImport submits free text, one record per line, and
// returns the server's per-line parse reports without persisting
// anything.
func (c *Client) PreviewInvoiceImport(ctx context.Context, text string) ([]ImportLineReport, error) {
	req, err := c.buildRequest(ctx, http.MethodPost, "/api/invoices/import/preview", strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")

	var out struct {
		Data []ImportLineReport `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
