// internal/identity/document.go
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Corphon/LaporanOCR/internal/report"
)

// Document is the data read from an ID image. Fields the model could not
// find, or answered with null, are empty strings.
type Document struct {
	DocumentType        string         `json:"documentType"`
	NamaLengkap         string         `json:"namaLengkap"`
	NomorIdentitas      string         `json:"nomorIdentitas"`
	Alamat              string         `json:"alamat"`
	TempatLahir         string         `json:"tempatLahir"`
	TanggalLahir        string         `json:"tanggalLahir"`
	JenisKelamin        string         `json:"jenisKelamin"`
	Pekerjaan           string         `json:"pekerjaan"`
	Agama               string         `json:"agama"`
	NomorPolisi         string         `json:"nomorPolisi"`
	FamilyMembers       []FamilyMember `json:"familyMembers"`
	AlamatKartuKeluarga string         `json:"alamatKartuKeluarga"`
	JenisKendaraanStnk  string         `json:"jenisKendaraanStnk"`
	NamaPemilikStnk     string         `json:"namaPemilikStnk"`
	AlamatStnk          string         `json:"alamatStnk"`
}

// FamilyMember is one row of a Kartu Keluarga.
type FamilyMember struct {
	NamaLengkap      string `json:"namaLengkap"`
	NomorIdentitas   string `json:"nomorIdentitas"`
	Alamat           string `json:"alamat"`
	TempatLahir      string `json:"tempatLahir"`
	TanggalLahir     string `json:"tanggalLahir"`
	JenisKelamin     string `json:"jenisKelamin"`
	Pekerjaan        string `json:"pekerjaan"`
	HubunganKeluarga string `json:"hubunganKeluarga"`
}

// fencePattern matches a whole answer wrapped in a Markdown code block.
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFences removes a surrounding ```json ... ``` block, if any.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[2])
	}
	return text
}

// ParseDocument reads the model's JSON answer. Values are read leniently:
// null becomes "", numbers keep their digits, other types are dropped.
func ParseDocument(text string) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(StripFences(text))))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}

	doc := &Document{
		DocumentType:        str(fields, "documentType"),
		NamaLengkap:         str(fields, "namaLengkap"),
		NomorIdentitas:      str(fields, "nomorIdentitas"),
		Alamat:              str(fields, "alamat"),
		TempatLahir:         str(fields, "tempatLahir"),
		TanggalLahir:        str(fields, "tanggalLahir"),
		JenisKelamin:        str(fields, "jenisKelamin"),
		Pekerjaan:           str(fields, "pekerjaan"),
		Agama:               str(fields, "agama"),
		NomorPolisi:         str(fields, "nomorPolisi"),
		AlamatKartuKeluarga: str(fields, "alamatKartuKeluarga"),
		JenisKendaraanStnk:  str(fields, "jenisKendaraanStnk"),
		NamaPemilikStnk:     str(fields, "namaPemilikStnk"),
		AlamatStnk:          str(fields, "alamatStnk"),
	}
	if members, ok := fields["familyMembers"].([]interface{}); ok {
		for _, m := range members {
			row, ok := m.(map[string]interface{})
			if !ok {
				continue
			}
			doc.FamilyMembers = append(doc.FamilyMembers, FamilyMember{
				NamaLengkap:      str(row, "namaLengkap"),
				NomorIdentitas:   str(row, "nomorIdentitas"),
				Alamat:           str(row, "alamat"),
				TempatLahir:      str(row, "tempatLahir"),
				TanggalLahir:     str(row, "tanggalLahir"),
				JenisKelamin:     str(row, "jenisKelamin"),
				Pekerjaan:        str(row, "pekerjaan"),
				HubunganKeluarga: str(row, "hubunganKeluarga"),
			})
		}
	}
	return doc, nil
}

func str(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// ReportIdentity maps the document onto the report form. Umur is derived
// from TanggalLahir as of now and left empty when the date is unusable.
// A trailing "Kabupaten X" or "Kota X" segment of the address becomes
// Kabupaten and is removed from Alamat.
func (d *Document) ReportIdentity(now time.Time) report.Identity {
	alamat, kabupaten := SplitRegency(d.Alamat)
	umur := ""
	if age, err := Age(d.TanggalLahir, now); err == nil {
		umur = strconv.Itoa(age)
	}
	return report.Identity{
		Nama:      d.NamaLengkap,
		Umur:      umur,
		Pekerjaan: d.Pekerjaan,
		Alamat:    alamat,
		Kabupaten: kabupaten,
	}
}

// Age returns full years between a DD-MM-YYYY birth date and now. "/" and
// "." separators are accepted too.
func Age(birth string, now time.Time) (int, error) {
	parts := strings.FieldsFunc(birth, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	if len(parts) != 3 {
		return 0, fmt.Errorf("birth date %q is not DD-MM-YYYY", birth)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("birth date %q is not numeric", birth)
	}
	if year < 1900 || year > now.Year()+1 {
		return 0, fmt.Errorf("birth year %d out of range", year)
	}

	born := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if born.Day() != day || int(born.Month()) != month {
		return 0, fmt.Errorf("birth date %q does not exist", birth)
	}

	age := now.Year() - year
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < day) {
		age--
	}
	if age < 0 {
		return 0, fmt.Errorf("birth date %q is in the future", birth)
	}
	return age, nil
}

var regencyPrefixes = []string{"kabupaten ", "kab. ", "kab ", "kota "}

// SplitRegency separates the last address segment when it names a
// kabupaten or kota. The regency is returned without its prefix.
func SplitRegency(alamat string) (rest, regency string) {
	alamat = strings.TrimSpace(alamat)
	i := strings.LastIndex(alamat, ",")
	last := strings.TrimSpace(alamat[i+1:])
	lower := strings.ToLower(last)
	for _, prefix := range regencyPrefixes {
		if strings.HasPrefix(lower, prefix) {
			regency = strings.TrimSpace(last[len(prefix):])
			if i < 0 {
				return "", regency
			}
			return strings.TrimSpace(alamat[:i]), regency
		}
	}
	return alamat, ""
}
