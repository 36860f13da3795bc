package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ledger/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Statements"

var exportHeaders = []string{"ID", "Date", "Name", "Amount", "Category"}

func exportFilename(ext string) string {
	return fmt.Sprintf("attachment; filename=\"statements_%s.%s\"", time.Now().Format("20060102"), ext)
}

func (a *app) exportCSVHandler(c *gin.Context) {
	rows, err := a.statements.listByOwner(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		a.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := writeStatementsCSV(&buf, rows); err != nil {
		a.fail(c, err)
		return
	}
	c.Header("Content-Disposition", exportFilename("csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// safeCell keeps spreadsheet apps from evaluating user text as a formula.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func writeStatementsCSV(w io.Writer, rows []models.Statement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.DateString(),
			safeCell(r.Name),
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			safeCell(r.Category),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (a *app) exportXLSXHandler(c *gin.Context) {
	rows, err := a.statements.listByOwner(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		a.fail(c, err)
		return
	}
	f, err := statementsWorkbook(rows)
	if err != nil {
		a.fail(c, err)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		a.fail(c, err)
		return
	}
	c.Header("Content-Disposition", exportFilename("xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// statementsWorkbook lays the rows out under a header line with a total row
// at the bottom.
func statementsWorkbook(rows []models.Statement) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(exportSheet, cell, v)
	}
	for i, h := range exportHeaders {
		if err := set(i+1, 1, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	for i, r := range rows {
		line := i + 2
		for col, v := range []any{r.ID, r.DateString(), safeCell(r.Name), r.Amount, safeCell(r.Category)} {
			if err := set(col+1, line, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	if len(rows) > 0 {
		last := len(rows) + 1
		if err := set(3, last+1, "Total"); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellFormula(exportSheet, fmt.Sprintf("D%d", last+1), fmt.Sprintf("SUM(D2:D%d)", last)); err != nil {
			f.Close()
			return nil, err
		}
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err == nil {
		_ = f.SetColStyle(exportSheet, "D", style)
	}
	_ = f.SetColWidth(exportSheet, "B", "B", 12)
	_ = f.SetColWidth(exportSheet, "C", "C", 30)
	_ = f.SetColWidth(exportSheet, "E", "E", 15)
	return f, nil
}
