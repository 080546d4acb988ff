package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText converts an uploaded study-material file into plain text
// based on its extension. Image files carry no extractable text and
// return an empty string.
func ExtractText(fileHeader *multipart.FileHeader, ext string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		f, err := fileHeader.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		return ExtractTextFromPDF(f)
	case "docx":
		return ExtractTextFromDOCX(fileHeader)
	case "txt", "md":
		return ExtractTextFromTXT(fileHeader)
	case "png", "jpg", "jpeg", "gif", "webp":
		return "", nil
	default:
		return "", errors.New("unsupported file type: " + ext)
	}
}

func ExtractTextFromPDF(file multipart.File) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("cannot read PDF file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("cannot create PDF reader: %w", err)
	}

	var textBuilder bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
	}

	return textBuilder.String(), nil
}

// ExtractTextFromDOCX unpacks word/document.xml (a .docx is a zip) and
// collects the <w:t> text nodes.
func ExtractTextFromDOCX(fileHeader *multipart.FileHeader) (string, error) {
	tmpFile, err := os.CreateTemp("", "upload-*.docx")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", err
	}

	r, err := zip.OpenReader(tmpFile.Name())
	if err != nil {
		return "", err
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml not found in docx archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "t" {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				buf.WriteString(text + " ")
			}
		}
	}

	return strings.TrimSpace(buf.String()), nil
}

func ExtractTextFromTXT(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", err
	}
	return buf.String(), nil
}
