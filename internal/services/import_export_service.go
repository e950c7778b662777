package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/evaluation-registry/internal/models"
	"github.com/SAP-F-2025/evaluation-registry/internal/repositories"
	"github.com/SAP-F-2025/evaluation-registry/internal/validator"
)

const (
	ledgerSheet = "Ledger"
	exportBatch = 500
)

var ledgerExportHeader = []interface{}{"Seq", "Op", "Caller", "Payload", "Prev Hash", "Hash", "Block Time"}

// ImportRowErrors lists every rejected row of an enrollment sheet
type ImportRowErrors []models.ImportRowError

func (e ImportRowErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, row := range e {
		parts = append(parts, fmt.Sprintf("row %d: %s", row.Row, row.Message))
	}
	return strings.Join(parts, "; ")
}

type importExportService struct {
	repo      repositories.Repository
	gate      *Gate
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, gate *Gate, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		gate:      gate,
		logger:    logger,
		validator: validator,
	}
}

type importRow struct {
	row      int
	courseID uint
	student  models.Address
}

// ImportEnrollments reads (course_id, student_address) rows after a header row
func (s *importExportService) ImportEnrollments(ctx context.Context, caller models.Address, r io.Reader) (*models.ImportResult, error) {
	s.logger.Info("Importing enrollments", "caller", caller)

	result := &models.ImportResult{}
	entry, err := s.gate.Execute(ctx, models.OpImportEnrollments, caller, func(tx *gorm.DB, block Block) (interface{}, error) {
		if err := requireAdmin(ctx, s.repo, tx, caller); err != nil {
			return nil, err
		}

		rows, err := s.readEnrollmentRows(r)
		if err != nil {
			return nil, err
		}

		payload := importEnrollmentsPayload{Rows: make([]importRowPayload, 0, len(rows))}
		checked := make(map[uint]bool)
		for i, row := range rows {
			if !checked[row.courseID] {
				if _, err := loadCourse(ctx, s.repo, tx, row.courseID); err != nil {
					return nil, fmt.Errorf("row %d: %w", row.row, err)
				}
				checked[row.courseID] = true
			}

			created, err := s.repo.Enrollment().Mark(ctx, tx, &models.Enrollment{
				CourseID:  row.courseID,
				Student:   row.student,
				MarkedSeq: block.Seq,
				Ordinal:   i,
			})
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row.row, err)
			}
			if created {
				payload.MarkedRows++
			} else {
				payload.ExistingRows++
			}
			payload.Rows = append(payload.Rows, importRowPayload{CourseID: row.courseID, Student: row.student})
		}
		s.repo.Enrollment().InvalidateAll(ctx)

		result.TotalRows = len(rows)
		result.MarkedRows = payload.MarkedRows
		result.ExistingRows = payload.ExistingRows
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	result.Seq = entry.Seq
	result.CompletedAt = entry.BlockTime
	s.logger.Info("Enrollments imported", "rows", result.TotalRows, "marked", result.MarkedRows, "seq", entry.Seq)
	return result, nil
}

// readEnrollmentRows parses the first sheet; sheet row numbers are 1-based
// and include the header
func (s *importExportService) readEnrollmentRows(r io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable xlsx file: %w", ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidImport)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}

	var (
		rows    []importRow
		rowErrs ImportRowErrors
	)
	for i, cols := range cells {
		if i == 0 || blankRow(cols) {
			continue
		}
		rowNum := i + 1
		if len(cols) < 2 {
			rowErrs = append(rowErrs, models.ImportRowError{Row: rowNum, Message: "expected course_id and student_address"})
			continue
		}

		courseID, err := strconv.ParseUint(strings.TrimSpace(cols[0]), 10, 32)
		if err != nil {
			rowErrs = append(rowErrs, models.ImportRowError{Row: rowNum, Message: fmt.Sprintf("invalid course id %q", cols[0])})
			continue
		}
		student := models.NormalizeAddress(cols[1])
		if err := s.validator.Var("student_address", student.String(), "required,address"); err != nil {
			rowErrs = append(rowErrs, models.ImportRowError{Row: rowNum, Message: fmt.Sprintf("invalid student address %q", cols[1])})
			continue
		}
		rows = append(rows, importRow{row: rowNum, courseID: uint(courseID), student: student})
	}

	if len(rowErrs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, rowErrs)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no data rows", ErrInvalidImport, sheets[0])
	}
	return rows, nil
}

func blankRow(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExportLedger writes every ledger entry as one worksheet row
func (s *importExportService) ExportLedger(ctx context.Context, caller models.Address, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &ledgerExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	err := s.gate.View(func() error {
		if err := requireAdmin(ctx, s.repo, nil, caller); err != nil {
			return err
		}
		for fromSeq := uint64(1); ; {
			batch, err := s.repo.Ledger().List(ctx, nil, fromSeq, exportBatch)
			if err != nil {
				return err
			}
			for _, entry := range batch {
				rows++
				cell, err := excelize.CoordinatesToCellName(1, rows+1)
				if err != nil {
					return err
				}
				values := []interface{}{
					entry.Seq,
					string(entry.Op),
					entry.Caller.String(),
					string(entry.Payload),
					entry.PrevHash,
					entry.Hash,
					entry.BlockTime.UTC().Format(time.RFC3339Nano),
				}
				if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
					return fmt.Errorf("failed to write ledger row %d: %w", entry.Seq, err)
				}
				fromSeq = entry.Seq + 1
			}
			if len(batch) < exportBatch {
				return nil
			}
		}
	})
	if err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.Info("Ledger exported", "caller", caller, "entries", rows)
	return nil
}
