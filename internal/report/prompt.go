// internal/report/prompt.go
package report

import (
	"strings"
	"text/template"
)

var (
	identityTemplate = template.Must(template.New("identity").Parse(`
Format data identitas berikut sesuai aturan ini: "Sdr. [Nama], [Umur] Th, [Pekerjaan], Alamat [Alamat] Kab. [Kabupaten]." Jangan menggunakan huruf kapital semua.

Data:
Nama: {{.Nama}}
Umur: {{.Umur}}
Pekerjaan: {{.Pekerjaan}}
Alamat: {{.Alamat}}
Kabupaten: {{.Kabupaten}}

Tuliskan format identitasnya saja.
`))

	praKejadianTemplate = template.Must(template.New("pra_kejadian").Parse(`
Anda adalah asisten yang bertugas meringkas teks "Kronologis Kejadian" untuk bagian "Pra Kejadian" dalam laporan.
Aturan untuk meringkas adalah sebagai berikut:
1. Ambil ringkasan dari bagian "Kronologis Kejadian".
2. Dimulai dari kata "Sewaktu".
3. Berakhir tepat sebelum kalimat yang berbunyi "Akibat dari kejadian...".
4. Tulis ringkasan tersebut tanpa menambahkan informasi lain.

Berikut adalah teks "Kronologis Kejadian":

"{{.}}"

Tuliskan ringkasan "Pra Kejadian" sesuai aturan di atas.
`))
)

// IdentityPrompt asks for the one-line "Sdr. ..." identity sentence. Field
// values are embedded verbatim.
func IdentityPrompt(id Identity) string {
	return render(identityTemplate, id)
}

// PraKejadianPrompt asks for the span of kronologis from "Sewaktu" up to the
// sentence starting "Akibat dari kejadian".
func PraKejadianPrompt(kronologis string) string {
	return render(praKejadianTemplate, kronologis)
}

// text/template only escapes in html mode, so values pass through untouched.
func render(t *template.Template, data interface{}) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		// templates are static and data is plain strings
		panic(err)
	}
	return sb.String()
}
