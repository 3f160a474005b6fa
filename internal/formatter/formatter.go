// package formatter provides functions to export feed listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// Export is a titled listing of feed items ready to be rendered.
type Export struct {
	Title string
	Items []models.Item
}

// ExportToCSV converts a listing to CSV with columns: ID, Kind, Source, Title, URL, Channel, Extension, Size
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Kind", "Source", "Title", "URL", "Channel", "Extension", "Size"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Items {
		record := []string{
			item.ItemID,
			string(item.Kind),
			item.Source,
			item.Title,
			item.URL,
			item.Channel,
			item.Extension,
			item.SizeLabel,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a listing to Markdown with one linked entry per item
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Title))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(export.Items)))

	for i, item := range export.Items {
		detail := itemDetail(item)
		if detail != "" {
			detail = " (" + detail + ")"
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, item.Title, item.URL, detail))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a listing to plain text
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Listing: %s\n", export.Title))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(export.Items)))

	for i, item := range export.Items {
		detail := itemDetail(item)
		if detail != "" {
			detail = " - " + detail
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n   %s\n", i+1, item.Title, detail, item.URL))
	}

	return buf.Bytes(), nil
}

// ToItemsJSON generates a pretty JSON representation of a listing
func ToItemsJSON(export *Export) ([]byte, error) {
	return shared.MarshalJSON(export.Items, true)
}

// itemDetail renders the per-kind metadata suffix: channel for videos,
// extension and size for documents.
func itemDetail(item models.Item) string {
	switch item.Kind {
	case models.KindVideo:
		return item.Channel
	case models.KindDocument:
		parts := []string{}
		if item.Extension != "" {
			parts = append(parts, item.Extension)
		}
		if item.SizeLabel != "" {
			parts = append(parts, item.SizeLabel)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// WriteExport renders a listing in the given format ("csv", "markdown",
// "text", or "json") and writes it to a file derived from baseFilepath.
// Returns the written filename.
func WriteExport(export *Export, format, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = strings.ReplaceAll(strings.ToLower(export.Title), " ", "_")
	}

	var data []byte
	var err error
	var ext string

	switch format {
	case "csv":
		data, err = ExportToCSV(export)
		ext = ".csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(export)
		ext = ".md"
	case "text", "txt":
		data, err = ExportToText(export)
		ext = ".txt"
	case "json":
		data, err = ToItemsJSON(export)
		ext = ".json"
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	filename := baseFilepath + ext
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filename, nil
}
