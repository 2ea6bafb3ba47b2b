package extract

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	MIMEText        = "text/plain"
	MIMEPDF         = "application/pdf"
	MIMEDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMECSV         = "text/csv"
	MIMEJSON        = "application/json"
	MIMEOctetStream = "application/octet-stream"
)

// extensionTypes covers the supported formats when the system table has no entry.
var extensionTypes = map[string]string{
	".txt":  MIMEText,
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
	".xlsx": MIMEXLSX,
	".csv":  MIMECSV,
	".json": MIMEJSON,
}

// mimeAliases folds names some system tables use onto the canonical ones.
var mimeAliases = map[string]string{
	"text/comma-separated-values": MIMECSV,
	"application/csv":             MIMECSV,
	"application/x-pdf":           MIMEPDF,
	"text/json":                   MIMEJSON,
}

// GuessMIME resolves a MIME type from a file name. The system table is
// consulted first, then the fixed extension table. It returns "" when the
// type cannot be determined.
func GuessMIME(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t := NormalizeMIME(mime.TypeByExtension(ext)); t != "" {
		return t
	}
	return extensionTypes[ext]
}

// Resolve picks the MIME type used to dispatch extraction. The declared name
// wins; a declared type is only a hint for names without a usable extension.
func Resolve(name, declaredType string) string {
	if t := GuessMIME(name); t != "" {
		return t
	}
	if t := NormalizeMIME(declaredType); t != "" && t != MIMEOctetStream {
		return t
	}
	return ""
}

// NormalizeMIME lowercases a media type and drops parameters such as charset.
func NormalizeMIME(raw string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
	if alias, ok := mimeAliases[clean]; ok {
		return alias
	}
	return clean
}
