package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Leaderboard"

// ExportLeaderboard streams the ranked leaderboard as an XLSX workbook.
func (h *QuizHandler) ExportLeaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context(), queryLimit(c, h.leaderboardSize, maxLeaderboard))
	if err != nil {
		h.fail(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		h.fail(c, err)
		return
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		h.fail(c, err)
		return
	}
	header := []interface{}{"Rank", "Medal", "Name", "Level", "Percentage", "Time (s)", "Date"}
	if err := sw.SetRow("A1", header); err != nil {
		h.fail(c, err)
		return
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{e.Rank, e.Medal, e.Name, string(e.Level), e.Percentage, e.TimeTakenSeconds, e.Date.UTC().Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			h.fail(c, err)
			return
		}
	}
	if err := sw.Flush(); err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Warn("write leaderboard export", zap.Error(err))
	}
}
