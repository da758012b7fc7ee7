package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/wms/ledger"
	"github.com/bitfantasy/nimo-wms/internal/wms/notify"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

// Handlers 处理器集合
type Handlers struct {
	Inventory *InventoryHandler
	Catalog   *CatalogHandler
	Assembly  *AssemblyHandler
	Export    *ExportHandler
	SSE       *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *notify.Hub) *Handlers {
	return &Handlers{
		Inventory: NewInventoryHandler(svc.Inventory),
		Catalog:   NewCatalogHandler(svc.Catalog),
		Assembly:  NewAssemblyHandler(svc.Assembly),
		Export:    NewExportHandler(svc.Inventory),
		SSE:       NewSSEHandler(hub),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 状态冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// Unprocessable 业务规则拒绝响应
func Unprocessable(c *gin.Context, message string) {
	Error(c, 42200, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 按业务错误类型映射HTTP状态码
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidSkuLength),
		errors.Is(err, ledger.ErrDescriptionTooLong),
		errors.Is(err, ledger.ErrInvalidAdjustDetails),
		errors.Is(err, ledger.ErrBomConstructIssue):
		BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrInventoryNotFound),
		errors.Is(err, ledger.ErrLocationNotFound),
		errors.Is(err, ledger.ErrMaterialNotFound),
		errors.Is(err, ledger.ErrWorkOrderNotFound),
		errors.Is(err, ledger.ErrStagingAreaNotFound),
		errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrDuplicateSerial),
		errors.Is(err, ledger.ErrMaterialAlreadyExists),
		errors.Is(err, ledger.ErrWorkOrderAlreadyExists),
		errors.Is(err, ledger.ErrWorkOrderState):
		Conflict(c, err.Error())
	case errors.Is(err, ledger.ErrInsufficientInventory),
		errors.Is(err, ledger.ErrInventoryFull),
		errors.Is(err, ledger.ErrStorageOverflow):
		Unprocessable(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
