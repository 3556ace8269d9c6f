package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// A .docx file is a zip whose main body usually lives at word/document.xml.
// [Content_Types].xml can point the main part elsewhere, so that is consulted
// first and the conventional path used as a fallback.
const (
	docxDefaultBodyPath  = "word/document.xml"
	docxContentTypesPath = "[Content_Types].xml"
	docxBodyContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// wordTextNode matches <w:t> nodes with or without attributes. Pulling text
// nodes directly keeps content searchable regardless of run and paragraph
// attributes in real-world documents.
var wordTextNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

var bodyPartNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxBodyContentType) + `"`),
	regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxBodyContentType) + `"[^>]+PartName="([^"]+)"`),
}

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	bodyPath := docxBodyPath(zr)
	body, err := readZipFile(zr, bodyPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}

	matches := wordTextNode.FindAllStringSubmatch(string(body), -1)
	if len(matches) == 0 {
		return "", nil
	}
	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(m[1]))
	}
	return strings.TrimSpace(b.String()), nil
}

// docxBodyPath resolves the main document part from [Content_Types].xml,
// falling back to the conventional path.
func docxBodyPath(zr *zip.Reader) string {
	types, err := readZipFile(zr, docxContentTypesPath)
	if err != nil {
		return docxDefaultBodyPath
	}
	for _, re := range bodyPartNamePatterns {
		if m := re.FindStringSubmatch(string(types)); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return docxDefaultBodyPath
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
