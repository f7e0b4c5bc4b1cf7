// internal/api/error_codes.go
package api

import "github.com/Corphon/LaporanOCR/internal/report"

// User-facing messages. The web form shows these verbatim.
const (
	MsgNoImageUploaded = "Tidak ada file gambar yang diunggah."
	MsgNoImageSelected = "Tidak ada file gambar yang dipilih."
	MsgImageTooLarge   = "Ukuran file gambar melebihi batas yang diizinkan."
	MsgOCRFailed       = "Terjadi kesalahan saat memproses OCR: "
	MsgInvalidImage    = "File yang diunggah bukan gambar yang valid."

	MsgAPIKeyMissing      = "Kunci API Gemini tidak ditemukan."
	MsgIdentityRequired   = report.MsgIdentityRequired
	MsgKronologisRequired = report.MsgKronologisRequired
	MsgUpstreamFailed     = "Terjadi kesalahan API: "
	MsgUpstreamMalformed  = "Respons API tidak valid: "
	MsgUnexpected         = "Terjadi kesalahan tidak terduga: "

	MsgRateLimited = "Terlalu banyak permintaan. Silakan coba lagi nanti."
)
