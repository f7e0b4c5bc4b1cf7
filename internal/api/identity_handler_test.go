package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/Corphon/LaporanOCR/internal/identity"
	"github.com/Corphon/LaporanOCR/internal/llm/providers/google"
)

const ktpAnswer = "```json\n" + `{
  "documentType": "KTP",
  "namaLengkap": "Siti Aminah",
  "nomorIdentitas": "3208014506900002",
  "alamat": "Kp. Cibeureum, RT 002 RW 005, Ds. Cilimus, Kec. Cilimus, Kabupaten Kuningan",
  "tempatLahir": "Kuningan",
  "tanggalLahir": "05-06-1990",
  "jenisKelamin": "Perempuan",
  "pekerjaan": "Pedagang",
  "agama": null
}` + "\n```"

func testPicture() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	return img
}

func jpegImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testPicture(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func bmpImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testPicture()); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	return buf.Bytes()
}

func postIdentity(t *testing.T, router http.Handler, filename string, data []byte, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if role != "" {
		_ = mw.WriteField("peran", role)
	}
	fw, err := mw.CreateFormFile(imageField, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	_, _ = fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/extract-identity", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(router, req)
}

func TestExtractIdentityEndToEnd(t *testing.T) {
	var got google.GenerateRequest
	srv, calls := fakeGeminiRequests(t, func(body google.GenerateRequest) (int, string) {
		got = body
		return http.StatusOK, candidate(ktpAnswer)
	})
	env := newTestEnv(t, envOptions{apiKey: "k", geminiURL: srv.URL})

	data := jpegImage(t)
	w := postIdentity(t, env.router, "ktp.jpg", data, "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	if atomic.LoadInt64(calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", atomic.LoadInt64(calls))
	}

	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil {
		t.Fatalf("expected inline image then prompt, got %+v", parts)
	}
	if parts[0].InlineData.MimeType != "image/jpeg" || parts[0].InlineData.Data != base64.StdEncoding.EncodeToString(data) {
		t.Fatalf("jpeg should be sent unchanged, got mime %q", parts[0].InlineData.MimeType)
	}
	if !strings.Contains(parts[1].Text, "documentType") {
		t.Fatalf("subject prompt expected, got %q", parts[1].Text)
	}
	cfg := got.GenerationConfig
	if cfg == nil || cfg.ResponseMimeType != "application/json" || cfg.Temperature != 0.1 {
		t.Fatalf("unexpected generationConfig: %+v", cfg)
	}

	var res identity.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Document == nil || res.Document.NomorIdentitas != "3208014506900002" || res.Document.Agama != "" {
		t.Fatalf("unexpected document: %+v", res.Document)
	}
	id := res.Identity
	if id.Nama != "Siti Aminah" || id.Pekerjaan != "Pedagang" || id.Kabupaten != "Kuningan" || id.Umur == "" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.Alamat != "Kp. Cibeureum, RT 002 RW 005, Ds. Cilimus, Kec. Cilimus" {
		t.Fatalf("unexpected alamat: %q", id.Alamat)
	}
}

func TestExtractIdentityWitnessAndNormalization(t *testing.T) {
	var got google.GenerateRequest
	srv, _ := fakeGeminiRequests(t, func(body google.GenerateRequest) (int, string) {
		got = body
		return http.StatusOK, candidate(`{"namaLengkap":"Asep Saepudin","pekerjaan":null}`)
	})
	env := newTestEnv(t, envOptions{apiKey: "k", geminiURL: srv.URL})

	w := postIdentity(t, env.router, "saksi.bmp", bmpImage(t), "saksi")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	parts := got.Contents[0].Parts
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "image/png" {
		t.Fatalf("bmp should be sent as png, got %+v", parts[0])
	}
	if !strings.Contains(parts[1].Text, "SAKSI") {
		t.Fatalf("witness prompt expected")
	}
	body := decodeBody(t, w)
	if body["role"] != "saksi" {
		t.Fatalf("unexpected role: %v", body["role"])
	}
}

func TestExtractIdentityRejections(t *testing.T) {
	srv, calls := fakeGemini(t, func(string) (int, string) { return http.StatusOK, candidate(ktpAnswer) })
	env := newTestEnv(t, envOptions{apiKey: "k", geminiURL: srv.URL})

	body, contentType := multipartBody(t, "other_field", "ktp.jpg", jpegImage(t))
	req := httptest.NewRequest(http.MethodPost, "/extract-identity", body)
	req.Header.Set("Content-Type", contentType)
	w := do(env.router, req)
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != MsgNoImageUploaded {
		t.Fatalf("absent field: %d %s", w.Code, w.Body.String())
	}

	w = postIdentity(t, env.router, "", jpegImage(t), "")
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != MsgNoImageSelected {
		t.Fatalf("empty filename: %d %s", w.Code, w.Body.String())
	}

	w = postIdentity(t, env.router, "ktp.txt", []byte("bukan gambar"), "")
	if w.Code != http.StatusBadRequest || decodeBody(t, w)["error"] != MsgInvalidImage {
		t.Fatalf("invalid image: %d %s", w.Code, w.Body.String())
	}

	if n := atomic.LoadInt64(calls); n != 0 {
		t.Fatalf("rejected uploads must not reach upstream, got %d calls", n)
	}
}

func TestExtractIdentityMissingKey(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	w := postIdentity(t, env.router, "ktp.jpg", jpegImage(t), "")
	if w.Code != http.StatusInternalServerError || decodeBody(t, w)["error"] != MsgAPIKeyMissing {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestExtractIdentityUpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		prefix string
	}{
		{"http error", http.StatusServiceUnavailable, `{"error":{"message":"overloaded","status":"UNAVAILABLE"}}`, MsgUpstreamFailed},
		{"answer not json", http.StatusOK, candidate("Maaf, gambar tidak jelas."), MsgUpstreamMalformed},
		{"no text part", http.StatusOK, `{"candidates":[]}`, MsgUpstreamMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := fakeGemini(t, func(string) (int, string) { return tc.status, tc.body })
			env := newTestEnv(t, envOptions{apiKey: "super-secret", geminiURL: srv.URL})

			w := postIdentity(t, env.router, "ktp.jpg", jpegImage(t), "")
			msg, _ := decodeBody(t, w)["error"].(string)
			if w.Code != http.StatusInternalServerError || !strings.HasPrefix(msg, tc.prefix) {
				t.Fatalf("got %d %q", w.Code, msg)
			}
			if strings.Contains(msg, "super-secret") {
				t.Fatalf("api key leaked: %q", msg)
			}
		})
	}
}
