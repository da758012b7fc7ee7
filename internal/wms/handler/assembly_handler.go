package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

// AssemblyHandler 工单与装配接口
type AssemblyHandler struct {
	svc *service.AssemblyService
}

func NewAssemblyHandler(svc *service.AssemblyService) *AssemblyHandler {
	return &AssemblyHandler{svc: svc}
}

func parseWorkOrderNumber(c *gin.Context) (uint32, bool) {
	v, err := strconv.ParseUint(c.Param("number"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的工单号")
		return 0, false
	}
	return uint32(v), true
}

// CreateWorkOrderRequest 建单请求
type CreateWorkOrderRequest struct {
	WorkOrderNumber uint32 `json:"work_order_number" binding:"required"`
	Sku             string `json:"sku" binding:"required"`
}

// Create 创建工单
// POST /api/v1/wms/work-orders
func (h *AssemblyHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	err := h.svc.CreateWorkOrder(c.Request.Context(), GetUserID(c), req.WorkOrderNumber, req.Sku)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, gin.H{"work_order_number": req.WorkOrderNumber})
}

// Get 查询工单
// GET /api/v1/wms/work-orders/:number
func (h *AssemblyHandler) Get(c *gin.Context) {
	number, ok := parseWorkOrderNumber(c)
	if !ok {
		return
	}
	wo, err := h.svc.WorkOrder(number)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, wo)
}

// List 工单列表
// GET /api/v1/wms/work-orders
func (h *AssemblyHandler) List(c *gin.Context) {
	wos, err := h.svc.WorkOrders()
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": wos})
}

// Stage 备料
// POST /api/v1/wms/work-orders/:number/stage
func (h *AssemblyHandler) Stage(c *gin.Context) {
	number, ok := parseWorkOrderNumber(c)
	if !ok {
		return
	}
	owner := GetUserID(c)
	if err := h.svc.PrepareStaging(c.Request.Context(), owner, owner, number); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// AssembleRequest 装配请求。serial_number 为成品序列号，
// staging_location 不传时默认 STAGING。
type AssembleRequest struct {
	SerialNumber    uint32 `json:"serial_number" binding:"required"`
	StagingLocation string `json:"staging_location"`
}

// Assemble 装配
// POST /api/v1/wms/work-orders/:number/assemble
func (h *AssemblyHandler) Assemble(c *gin.Context) {
	number, ok := parseWorkOrderNumber(c)
	if !ok {
		return
	}
	var req AssembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	staging := entity.Location(req.StagingLocation)
	if staging == "" {
		staging = entity.LocationStaging
	}
	owner := GetUserID(c)
	if err := h.svc.Assemble(c.Request.Context(), owner, owner, number, req.SerialNumber, staging); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"work_order_number": number, "serial_number": req.SerialNumber})
}

// GetAssembled 查询装配成品及其BOM
// GET /api/v1/wms/assembled/:sku/:serial
func (h *AssemblyHandler) GetAssembled(c *gin.Context) {
	serial, ok := parseSerial(c)
	if !ok {
		return
	}
	p, err := h.svc.AssembledProduct(GetUserID(c), c.Param("sku"), serial)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, p)
}
