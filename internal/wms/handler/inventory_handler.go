package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

// InventoryHandler 库存接口
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func parseSerial(c *gin.Context) (uint32, bool) {
	v, err := strconv.ParseUint(c.Param("serial"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的序列号")
		return 0, false
	}
	return uint32(v), true
}

// InsertItemRequest 入库请求
type InsertItemRequest struct {
	Sku           string `json:"sku" binding:"required"`
	SerialNumber  uint32 `json:"serial_number" binding:"required"`
	LotNumber     uint32 `json:"lot_number"`
	Qty           uint32 `json:"qty" binding:"required"`
	Location      string `json:"location" binding:"required"`
	AbcCode       string `json:"abc_code"`
	InventoryType string `json:"inventory_type"`
	ProductType   string `json:"product_type"`
	WeightLbs     uint32 `json:"weight_lbs"`
	ShelfLife     uint32 `json:"shelf_life"`
	CycleCount    uint32 `json:"cycle_count"`
}

// Insert 新条目入库
// POST /api/v1/wms/items
func (h *InventoryHandler) Insert(c *gin.Context) {
	var req InsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	owner := GetUserID(c)
	item := entity.Item{
		Owner:         owner,
		Sku:           req.Sku,
		SerialNumber:  req.SerialNumber,
		LotNumber:     req.LotNumber,
		Qty:           req.Qty,
		Location:      entity.Location(req.Location),
		MovedBy:       owner,
		AbcCode:       req.AbcCode,
		InventoryType: req.InventoryType,
		ProductType:   req.ProductType,
		WeightLbs:     req.WeightLbs,
		ShelfLife:     req.ShelfLife,
		CycleCount:    req.CycleCount,
	}
	if err := h.svc.Insert(c.Request.Context(), item); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, gin.H{"sku": req.Sku, "serial_number": req.SerialNumber})
}

// List 条目列表，支持 sku / location 过滤
// GET /api/v1/wms/items?sku=xxx&location=WAREHOUSE
func (h *InventoryHandler) List(c *gin.Context) {
	owner := GetUserID(c)

	if loc := c.Query("location"); loc != "" {
		items, err := h.svc.ItemsAt(owner, entity.Location(loc))
		if err != nil {
			RespondError(c, err)
			return
		}
		Success(c, gin.H{"items": items})
		return
	}
	if sku := c.Query("sku"); sku != "" {
		items, err := h.svc.ItemsBySku(owner, sku)
		if err != nil {
			RespondError(c, err)
			return
		}
		Success(c, gin.H{"items": items})
		return
	}
	items, err := h.svc.ItemsByOwner(owner)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// Get 查询单条
// GET /api/v1/wms/items/:sku/:serial
func (h *InventoryHandler) Get(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	item, err := h.svc.Item(GetUserID(c), c.Param("sku"), serial)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, item)
}

// ScrapRequest 报废请求
type ScrapRequest struct {
	Reason    string `json:"reason" binding:"required"`
	Equipment string `json:"equipment"`
}

// Scrap 报废条目
// POST /api/v1/wms/items/:sku/:serial/scrap
func (h *InventoryHandler) Scrap(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	var req ScrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	owner := GetUserID(c)
	details := entity.ScrapDetails{
		Issuer:    owner,
		Reason:    req.Reason,
		Equipment: req.Equipment,
	}
	if err := h.svc.Scrap(c.Request.Context(), owner, c.Param("sku"), serial, details); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// MoveRequest 移库请求
type MoveRequest struct {
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// Move 整件移库
// POST /api/v1/wms/items/:sku/:serial/move
func (h *InventoryHandler) Move(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	owner := GetUserID(c)
	err := h.svc.Move(c.Request.Context(), owner, owner, c.Param("sku"), serial,
		entity.Location(req.To), req.Reason)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// AdjustRequest 调整请求。只支持数量调整，库位变更走 move 接口。
type AdjustRequest struct {
	Type        string `json:"type" binding:"required"`
	OriginalQty uint32 `json:"original_qty"`
	NewQty      uint32 `json:"new_qty"`
	Reason      string `json:"reason" binding:"required"`
}

// Adjust 数量调整
// POST /api/v1/wms/items/:sku/:serial/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	owner := GetUserID(c)
	details := entity.AdjustDetails{
		Type:        entity.AdjustType(req.Type),
		OriginalQty: req.OriginalQty,
		NewQty:      req.NewQty,
		Reason:      req.Reason,
	}
	if err := h.svc.Adjust(c.Request.Context(), owner, owner, c.Param("sku"), serial, details); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// Audit 条目调整审计流水
// GET /api/v1/wms/items/:sku/:serial/audit
func (h *InventoryHandler) Audit(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	recs, err := h.svc.AdjustTrail(GetUserID(c), c.Param("sku"), serial)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": recs})
}

// Stock SKU汇总数量
// GET /api/v1/wms/stock/:sku
func (h *InventoryHandler) Stock(c *gin.Context) {
	sku := c.Param("sku")
	total, err := h.svc.StockLevel(GetUserID(c), sku)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"sku": sku, "total": total})
}

// ScrapList 报废记录列表
// GET /api/v1/wms/scrap
func (h *InventoryHandler) ScrapList(c *gin.Context) {
	recs, err := h.svc.ScrapRecords(GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": recs})
}
