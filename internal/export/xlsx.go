package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"parseview/internal/domain"
)

const sheetName = "Elements"

// WriteXLSX writes the header and every element of result as a single-sheet workbook.
func WriteXLSX(out io.Writer, result *domain.ParseResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if result != nil {
		for i := range result.Elements {
			el := &result.Elements[i]
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			row := []interface{}{
				el.Order,
				el.ID,
				el.Page,
				el.Category,
				el.BoundingBox.X,
				el.BoundingBox.Y,
				el.BoundingBox.Width,
				el.BoundingBox.Height,
				formatBool(el.HasImage()),
				formatBool(el.OCREnhanced),
				elementToRow(el)[len(columns)-1],
			}
			if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
				return fmt.Errorf("writing row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write dispatches to the writer for format.
func Write(out io.Writer, f Format, result *domain.ParseResult) error {
	if f == FormatXLSX {
		return WriteXLSX(out, result)
	}
	return WriteCSV(out, result)
}
