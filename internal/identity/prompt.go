// internal/identity/prompt.go
package identity

import (
	"strings"
	"text/template"
)

// Role selects which extraction prompt is used.
type Role string

const (
	// RoleSubject extracts everything a KTP, SIM, KK or STNK carries.
	RoleSubject Role = "pelapor"
	// RoleWitness extracts only the personal fields of a witness ID.
	RoleWitness Role = "saksi"
)

// ParseRole maps a form value to a Role. Anything but "saksi" is the subject.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleWitness)) {
		return RoleWitness
	}
	return RoleSubject
}

const addressRules = `{{define "alamat"}}Aturan alamat (berlaku untuk setiap field alamat):
a. Ambil nama kampung atau jalan (beserta nomor rumah), RT, RW, desa atau kelurahan, kecamatan, dan kabupaten atau kota.
b. Susun dengan urutan: "[Kp./Jl. Nama], RT xxx RW xxx, [Ds./Kel.] [Nama], Kec. [Nama], [Kabupaten/Kota] [Nama]".
c. Gunakan "Ds." untuk wilayah kabupaten dan "Kel." untuk wilayah kota.
d. Jika sebuah komponen tidak ada, hilangkan komponen itu dan pertahankan urutan sisanya.
e. Jangan sertakan nama provinsi.
   Contoh: "Kp. Sindangsari, RT 001 RW 003, Ds. Sindangjaya, Kec. Cikalong, Kabupaten Tasikmalaya".
{{end}}`

var prompts = template.Must(template.New("identity").Parse(addressRules + `
{{define "pelapor"}}Anda adalah asisten OCR untuk petugas kepolisian di Indonesia. Analisis gambar dokumen ini dan ekstrak datanya.
Tentukan jenis dokumen: KTP, SIM, KK, STNK, atau LAINNYA.

Kembalikan HANYA JSON yang valid dengan bentuk berikut:
{
  "documentType": "KTP" | "SIM" | "KK" | "STNK" | "LAINNYA",
  "namaLengkap": "",
  "nomorIdentitas": "",
  "alamat": "",
  "tempatLahir": "",
  "tanggalLahir": "DD-MM-YYYY",
  "jenisKelamin": "Laki-laki" | "Perempuan",
  "pekerjaan": "",
  "agama": "",
  "nomorPolisi": "",
  "familyMembers": [
    {"namaLengkap": "", "nomorIdentitas": "", "alamat": "", "tempatLahir": "", "tanggalLahir": "DD-MM-YYYY", "jenisKelamin": "", "pekerjaan": "", "hubunganKeluarga": ""}
  ],
  "alamatKartuKeluarga": "",
  "jenisKendaraanStnk": "",
  "namaPemilikStnk": "",
  "alamatStnk": ""
}

{{template "alamat"}}
Untuk KK, isi familyMembers dan alamatKartuKeluarga. Untuk STNK, isi nomorPolisi, jenisKendaraanStnk, namaPemilikStnk dan alamatStnk.
Gunakan huruf kapital yang wajar, jangan semua huruf kapital.
Jika informasi tidak ditemukan, isi dengan string kosong "".{{end}}

{{define "saksi"}}Anda adalah asisten OCR untuk petugas kepolisian di Indonesia. Gambar ini adalah dokumen identitas SAKSI (biasanya KTP atau SIM).

Kembalikan HANYA JSON yang valid dengan bentuk berikut:
{
  "namaLengkap": "",
  "nomorIdentitas": "",
  "alamat": "",
  "tempatLahir": "",
  "tanggalLahir": "DD-MM-YYYY",
  "jenisKelamin": "Laki-laki" | "Perempuan",
  "pekerjaan": ""
}

{{template "alamat"}}
Gunakan huruf kapital yang wajar, jangan semua huruf kapital.
Jika informasi tidak ditemukan, isi dengan string kosong "".{{end}}`))

// Prompt returns the extraction instructions for role. Unknown roles get
// the subject prompt.
func Prompt(role Role) string {
	if role != RoleWitness {
		role = RoleSubject
	}
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, string(role), nil); err != nil {
		panic(err)
	}
	return sb.String()
}
