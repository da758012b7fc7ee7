package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

// ExportHandler 库存台账Excel导出
type ExportHandler struct {
	svc *service.InventoryService
}

func NewExportHandler(svc *service.InventoryService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

var inventoryExportHeaders = []string{
	"SKU", "序列号", "批号", "数量", "库位", "ABC分类", "库存类型", "产品类型", "重量(lbs)", "保质期", "盘点次数",
}

// Export 导出当前货主全部库存条目
// GET /api/v1/wms/export
func (h *ExportHandler) Export(c *gin.Context) {
	owner := GetUserID(c)
	items, err := h.svc.ItemsByOwner(owner)
	if err != nil {
		RespondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "库存台账"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, head := range inventoryExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, head)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, item := range items {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Sku)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.SerialNumber)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.LotNumber)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Qty)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), string(item.Location))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.AbcCode)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.InventoryType)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), item.ProductType)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), item.WeightLbs)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), item.ShelfLife)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", row), item.CycleCount)
	}

	colWidths := []float64{18, 12, 10, 8, 14, 8, 18, 18, 10, 10, 10}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
