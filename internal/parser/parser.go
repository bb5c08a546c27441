package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// LoadPages extracts an ordered sequence of raw page texts from a document.
// Pages (sheets, for spreadsheet formats) that fail to extract or come back
// empty are logged and skipped; the rest of the document is still processed.
func LoadPages(filePath string) ([]string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("document not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return loadPDF(filePath)
	case ".docx":
		return loadDOCX(filePath)
	case ".xlsx":
		return loadXLSX(filePath)
	case ".ods":
		return loadODS(filePath)
	case ".md":
		return loadMarkdown(filePath)
	case ".txt":
		return loadText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func loadPDF(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", filePath, err)
	}

	numPages := reader.NumPage()
	log.Info().Str("file", filePath).Int("pages", numPages).Msg("opened pdf")

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			log.Warn().Int("page", i).Msg("skipping null pdf page")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("failed to extract page text, skipping")
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			log.Warn().Int("page", i).Msg("page text is empty")
			continue
		}
		pages = append(pages, pageText)
	}

	log.Info().Int("extracted", len(pages)).Msg("pdf text extraction complete")
	return pages, nil
}

// loadDOCX treats the whole document body as a single page; docx carries no
// page boundaries.
func loadDOCX(filePath string) ([]string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	text := stripXMLTags(content)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []string{text}, nil
}

func loadXLSX(filePath string) ([]string, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(sheet.Name + "\n")
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) != "" {
			pages = append(pages, text.String())
		}
	}
	return pages, nil
}

func loadODS(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			log.Warn().Err(err).Str("sheet", sheetName).Msg("failed to read sheet, skipping")
			continue
		}
		var text strings.Builder
		text.WriteString(sheetName + "\n")
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) != "" {
			pages = append(pages, text.String())
		}
	}
	return pages, nil
}

func loadText(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []string{string(data)}, nil
}

// stripXMLTags drops any leftover markup from docx body content.
func stripXMLTags(content string) string {
	var text strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			text.WriteRune(' ')
		case !inTag:
			text.WriteRune(r)
		}
	}
	return text.String()
}
