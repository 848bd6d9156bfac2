package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/portfolio/internal/service"
)

type stubMediaHost struct {
	uploads   []service.MediaUploadRequest
	destroyed []string
	err       error
}

func (s *stubMediaHost) Upload(_ context.Context, req service.MediaUploadRequest) (*service.MediaAsset, error) {
	s.uploads = append(s.uploads, req)
	if s.err != nil {
		return nil, s.err
	}
	return &service.MediaAsset{
		URL:          "https://res.cloudinary.com/demo/image/upload/" + req.Folder + "/" + req.PublicID + ".png",
		PublicID:     req.Folder + "/" + req.PublicID,
		ResourceType: req.ResourceType,
		Format:       "png",
		Width:        4,
		Height:       3,
		Bytes:        int64(len(req.Data)),
	}, nil
}

func (s *stubMediaHost) Destroy(_ context.Context, publicID, resourceType string) error {
	s.destroyed = append(s.destroyed, resourceType+":"+publicID)
	return s.err
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, token, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadMediaForwardsImage(t *testing.T) {
	host := &stubMediaHost{}
	opts := testOptions()
	opts.MediaHost = host
	api, r := setupTestAPI(t, opts)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartUpload(t, adminToken(t, api), "cover.png", "image/png", encodeTestPNG(t)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if len(host.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(host.uploads))
	}
	if host.uploads[0].Folder != "portfolio/blogs" || host.uploads[0].ResourceType != service.ResourceTypeImage {
		t.Fatalf("unexpected upload request %+v", host.uploads[0])
	}

	var body struct {
		Success  bool   `json:"success"`
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
	}
	decodeBody(t, rr, &body)
	if !body.Success || !strings.HasPrefix(body.URL, "https://res.cloudinary.com/") || body.PublicID == "" {
		t.Fatalf("unexpected response %+v", body)
	}
}

func TestUploadMediaRejectsBadFiles(t *testing.T) {
	host := &stubMediaHost{}
	opts := testOptions()
	opts.MediaHost = host
	opts.UploadMaxBytes = 1024
	api, r := setupTestAPI(t, opts)
	token := adminToken(t, api)

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		message     string
	}{
		{name: "wrong type", filename: "notes.txt", contentType: "text/plain", data: []byte("hello"), message: "Invalid file type"},
		{name: "corrupt image", filename: "broken.png", contentType: "image/png", data: []byte("not really a png"), message: "could not be read"},
		{name: "too large", filename: "huge.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 2048), message: "File size too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, multipartUpload(t, token, tt.filename, tt.contentType, tt.data))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.message) {
				t.Fatalf("expected %q in body, got %q", tt.message, rr.Body.String())
			}
		})
	}

	if len(host.uploads) != 0 {
		t.Fatalf("expected no uploads to reach the host, got %d", len(host.uploads))
	}
}

func TestUploadMediaWithoutFile(t *testing.T) {
	api, r := setupTestAPI(t, testOptions())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+adminToken(t, api))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestUploadMediaNotConfigured(t *testing.T) {
	api, r := setupTestAPI(t, testOptions())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartUpload(t, adminToken(t, api), "cover.png", "image/png", encodeTestPNG(t)))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

func TestDeleteMedia(t *testing.T) {
	host := &stubMediaHost{}
	opts := testOptions()
	opts.MediaHost = host
	api, r := setupTestAPI(t, opts)
	token := adminToken(t, api)

	rr := doJSON(t, r, http.MethodDelete, "/api/upload", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d without public_id, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = doJSON(t, r, http.MethodDelete, "/api/upload?public_id=portfolio/blogs/clip&resource_type=video", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(host.destroyed) != 1 || host.destroyed[0] != "video:portfolio/blogs/clip" {
		t.Fatalf("unexpected destroy calls %v", host.destroyed)
	}

	host.err = service.ErrMediaNotFound
	rr = doJSON(t, r, http.MethodDelete, "/api/upload?public_id=missing", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
