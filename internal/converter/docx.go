package converter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// pdfToDocx extracts the PDF's plain text and writes it out as a
// paragraph-per-line Word document. Layout is not preserved.
func pdfToDocx(inPath, outPath string) error {
	text, err := extractPDFText(inPath)
	if err != nil {
		return err
	}

	doc := docx.New().WithDefaultTheme()
	for _, p := range splitParagraphs(text) {
		doc.AddParagraph().AddText(p)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	defer f.Close()
	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func docxToPDF(inPath, outPath string) error {
	paragraphs, err := extractDocxParagraphs(inPath)
	if err != nil {
		return err
	}
	return textToPDF(paragraphs, outPath)
}

// docx XML subset: we only care about paragraph boundaries, text runs,
// and explicit breaks inside word/document.xml.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

// docxRun keeps its children in document order so text interleaved
// with breaks or tabs comes out in the order it was written.
type docxRun struct {
	Children []docxRunChild `xml:",any"`
}

type docxRunChild struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

func extractDocxParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("open docx: missing word/document.xml")
	}

	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			for _, c := range r.Children {
				switch c.XMLName.Local {
				case "t":
					sb.WriteString(c.Text)
				case "br":
					sb.WriteString("\n")
				case "tab":
					sb.WriteString("\t")
				}
			}
		}
		// A run can contain multiple breaks, splitting the paragraph.
		for _, line := range strings.Split(sb.String(), "\n") {
			paragraphs = append(paragraphs, line)
		}
	}
	if len(paragraphs) == 0 {
		paragraphs = []string{""}
	}
	return paragraphs, nil
}
