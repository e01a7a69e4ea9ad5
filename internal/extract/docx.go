package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	// wtTag matches <w:t>text</w:t> including attribute forms like xml:space="preserve".
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// Structural elements of the document body. DOCX XML never nests tables in
	// this codebase's inputs deeply enough for the lazy match to misfire.
	wTbl = regexp.MustCompile(`(?s)<w:tbl[ >].*?</w:tbl>`)
	wTr  = regexp.MustCompile(`(?s)<w:tr[ >].*?</w:tr>`)
	wTc  = regexp.MustCompile(`(?s)<w:tc[ >].*?</w:tc>`)
	wP   = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

	// partNameRe extracts PartName from Override elements in [Content_Types].xml,
	// in both attribute orders.
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

	xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

// extractDOCX extracts paragraph and table text from .docx bytes and chunks
// the combined document. Paragraph text comes first; every table row follows
// as one "cell | cell | cell" line, matching how the content reads in the
// document. Failures degrade to an empty chunk list.
func (e *Extractor) extractDOCX(content []byte) []string {
	docXML, err := readDocxDocumentXML(content)
	if err != nil {
		e.logger.Warn("docx extraction failed", zap.Error(err))
		return nil
	}

	var parts []string

	// Paragraph text, with table content held out so rows are not duplicated.
	bodyXML := wTbl.ReplaceAllString(docXML, "")
	for _, p := range wP.FindAllString(bodyXML, -1) {
		if text := runText(p); text != "" {
			parts = append(parts, text)
		}
	}

	// One line per table row, non-empty cells joined with a delimiter.
	for _, tbl := range wTbl.FindAllString(docXML, -1) {
		for _, row := range wTr.FindAllString(tbl, -1) {
			var cells []string
			for _, cell := range wTc.FindAllString(row, -1) {
				if text := runText(cell); text != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " | "))
			}
		}
	}

	return e.chunker.Chunk(strings.Join(parts, "\n"))
}

// runText joins the <w:t> text runs inside an XML fragment with spaces.
func runText(fragment string) string {
	matches := wtTag.FindAllStringSubmatch(fragment, -1)
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(xmlEntities.Replace(strings.TrimSpace(m[1])))
	}
	return strings.TrimSpace(b.String())
}

// readDocxDocumentXML opens the zip container and returns the main document
// XML. The main part path is resolved from [Content_Types].xml with a
// fall-back to the conventional word/document.xml.
func readDocxDocumentXML(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	for _, f := range zr.File {
		if f.Name != docPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", io.ErrUnexpectedEOF
}

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return ""
		}
		content := string(data)
		if matches := partNameRe.FindStringSubmatch(content); len(matches) > 1 {
			return strings.TrimPrefix(matches[1], "/")
		}
		if matches := partNameRe2.FindStringSubmatch(content); len(matches) > 1 {
			return strings.TrimPrefix(matches[1], "/")
		}
		return ""
	}
	return ""
}
