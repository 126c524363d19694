package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// DocumentKind 上傳檔案的種類
type DocumentKind string

const (
	DocumentText    DocumentKind = "text"
	DocumentPDF     DocumentKind = "pdf"
	DocumentDOCX    DocumentKind = "docx"
	DocumentHTML    DocumentKind = "html"
	DocumentImage   DocumentKind = "image"
	DocumentUnknown DocumentKind = "unknown"
)

// ErrUnsupportedDocument 無法擷取文字的檔案類型
var ErrUnsupportedDocument = errors.New("unsupported document type")

var (
	strictPolicy = bluemonday.StrictPolicy()
)

// DetectKind 依內容判斷檔案種類，不信任副檔名
func DetectKind(data []byte) (DocumentKind, string) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return DocumentPDF, mt.String()
	case mt.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return DocumentDOCX, mt.String()
	case mt.Is("text/html"):
		return DocumentHTML, mt.String()
	case mt.Is("image/jpeg"), mt.Is("image/png"), mt.Is("image/gif"), mt.Is("image/webp"):
		return DocumentImage, mt.String()
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return DocumentText, mt.String()
		}
	}
	return DocumentUnknown, mt.String()
}

// ExtractDocument 從 PDF、DOCX、HTML 或純文字取出文字；圖片需交給 OCR
func ExtractDocument(data []byte) (string, DocumentKind, error) {
	kind, mt := DetectKind(data)
	switch kind {
	case DocumentPDF:
		text, err := ExtractPDF(data)
		return text, kind, err
	case DocumentDOCX:
		text, err := ExtractDOCX(data)
		return text, kind, err
	case DocumentHTML:
		text, err := PageText(string(data))
		return text, kind, err
	case DocumentText:
		return CleanPastedText(string(data)), kind, nil
	default:
		return "", kind, fmt.Errorf("%w: %s", ErrUnsupportedDocument, mt)
	}
}

// ExtractPDF 逐頁取出純文字
func ExtractPDF(data []byte) (text string, err error) {
	// 損壞的 PDF 可能讓解析器 panic
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(strings.TrimSpace(pageText))
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String()), nil
}

// ExtractDOCX 讀取 word/document.xml，每個段落一行
func ExtractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte(' ')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
			}
		}
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// CleanPastedText 貼上的文字若含 HTML 標記則移除，並做 NFC 正規化
func CleanPastedText(text string) string {
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		// 區塊元素換成換行，避免整段黏在一起
		text = blockBreaks.Replace(text)
		text = html.UnescapeString(strictPolicy.Sanitize(text))
	}
	return norm.NFC.String(text)
}

var blockBreaks = strings.NewReplacer(
	"<br>", "\n<br>", "<br/>", "\n<br/>", "<br />", "\n<br />",
	"</p>", "</p>\n", "</li>", "</li>\n", "</div>", "</div>\n",
	"</h1>", "</h1>\n", "</h2>", "</h2>\n", "</h3>", "</h3>\n",
)
