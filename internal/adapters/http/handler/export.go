package handler

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/hr-records/internal/core/employee"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheetName = "Empleados"
)

var exportHeaders = []string{
	"ID", "Primer Nombre", "Otros Nombres", "Primer Apellido", "Segundo Apellido",
	"Tipo Identificación", "Número Identificación", "País", "Área", "Correo",
	"Estado", "Fecha Ingreso", "Fecha Registro", "Fecha Edición",
}

// renderEmployeesWorkbook は社員一覧を 1 シートの XLSX に変換します。
func renderEmployeesWorkbook(employees []*employee.Employee) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	for i, h := range exportHeaders {
		if err := f.SetCellValue(exportSheetName, cellName(i, 1), h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(exportSheetName, cellName(0, 1), cellName(len(exportHeaders)-1, 1), headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetColWidth(exportSheetName, "A", lastCol, 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for i, e := range employees {
		if err := f.SetSheetRow(exportSheetName, cellName(0, i+2), exportRow(e)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func exportRow(e *employee.Employee) *[]any {
	edited := ""
	if e.EditedAt != nil {
		edited = e.EditedAt.UTC().Format(timestampLayout)
	}
	row := []any{
		e.ID,
		e.FirstName,
		e.OtherNames,
		e.FirstSurname,
		e.SecondSurname,
		e.IdentificationType.Abbreviation,
		e.IdentificationNumber,
		e.Country.Name,
		e.Area.Name,
		e.Email,
		string(e.Status),
		e.HireDate.Format(dateLayout),
		e.RegisteredAt.UTC().Format(timestampLayout),
		edited,
	}
	return &row
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
