package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chrisdamba/foodwaste/internal/models"
	"github.com/chrisdamba/foodwaste/internal/report"
	"github.com/chrisdamba/foodwaste/internal/source"
)

// RunIDHeader carries the run ID of a generated report.
const RunIDHeader = "X-Report-Run-ID"

// MonthlyFileField is the multipart field of the monthly workbook. Weekly
// exports use one field per venue, named by the lower-case venue code.
const MonthlyFileField = "file"

func (s *Server) listVenues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.cfg.Venues})
}

func (s *Server) monthlyReport(c *gin.Context) {
	header, err := c.FormFile(MonthlyFileField)
	if err != nil {
		respondWithUploadError(c, MonthlyFileField, err)
		return
	}
	f, err := header.Open()
	if err != nil {
		respondWithUploadError(c, MonthlyFileField, err)
		return
	}
	defer f.Close()

	venues, err := s.gen.ReadMonthlyWorkbook(f)
	if err != nil {
		respondWithPipelineError(c, err)
		return
	}
	doc, err := s.gen.Monthly(c.Request.Context(), venues)
	s.metrics.observeReport(models.CadenceMonthly, docSize(doc), err)
	if err != nil {
		respondWithPipelineError(c, err)
		return
	}
	sendDocument(c, doc)
}

func (s *Server) weeklyReport(c *gin.Context) {
	inputs := make(map[string][]models.TransactionRow, len(s.cfg.Venues))
	for _, venue := range s.cfg.Venues {
		field := strings.ToLower(venue.Code)
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			respondWithUploadError(c, field, err)
			return
		}
		rows, err := readUpload(header)
		if err != nil {
			respondWithPipelineError(c, fmt.Errorf("venue %s: %w", venue.Code, err))
			return
		}
		inputs[venue.Code] = rows
	}

	venues, err := s.gen.OrderVenues(inputs)
	if err != nil {
		respondWithPipelineError(c, err)
		return
	}
	doc, err := s.gen.Weekly(c.Request.Context(), venues)
	s.metrics.observeReport(models.CadenceWeekly, docSize(doc), err)
	if err != nil {
		respondWithPipelineError(c, err)
		return
	}
	sendDocument(c, doc)
}

func readUpload(header *multipart.FileHeader) ([]models.TransactionRow, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return source.ReadNamed(f, header.Filename, source.WeeklyColumns...)
}

func respondWithUploadError(c *gin.Context, field string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondWithError(c, NewAPIError(http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
			"Upload exceeds the size limit.", fmt.Sprintf("limit is %d bytes", tooLarge.Limit)))
		return
	}
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeBadRequest,
		fmt.Sprintf("Missing or unreadable upload %q.", field), err.Error()))
}

func sendDocument(c *gin.Context, doc *report.Document) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header(RunIDHeader, doc.RunID)
	c.Data(http.StatusOK, models.SpreadsheetMIME, doc.Data)
}

func docSize(doc *report.Document) int {
	if doc == nil {
		return 0
	}
	return len(doc.Data)
}
