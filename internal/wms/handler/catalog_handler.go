package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

// CatalogHandler 配方与物料接口
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RecipeRequest 配方写入请求
type RecipeRequest struct {
	Sku                string                   `json:"sku" binding:"required"`
	RecipeID           uint32                   `json:"recipe_id"`
	RequiredComponents []entity.RecipeComponent `json:"required_components" binding:"required"`
	RequiredEquipment  string                   `json:"required_equipment"`
	OutputQuantity     uint32                   `json:"output_quantity" binding:"required"`
}

// UpsertRecipe 写入配方
// POST /api/v1/wms/recipes
func (h *CatalogHandler) UpsertRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	recipe := entity.Recipe{
		Sku:                req.Sku,
		RecipeID:           req.RecipeID,
		InsertedBy:         GetUserID(c),
		RequiredComponents: req.RequiredComponents,
		RequiredEquipment:  req.RequiredEquipment,
		OutputQuantity:     req.OutputQuantity,
	}
	if err := h.svc.UpsertRecipe(c.Request.Context(), recipe); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, gin.H{"sku": req.Sku})
}

// GetRecipe 查询配方
// GET /api/v1/wms/recipes/:sku
func (h *CatalogHandler) GetRecipe(c *gin.Context) {
	rec, err := h.svc.Recipe(c.Param("sku"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, rec)
}

// ListRecipes 配方列表
// GET /api/v1/wms/recipes
func (h *CatalogHandler) ListRecipes(c *gin.Context) {
	recs, err := h.svc.Recipes()
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": recs})
}

// MaterialRequest 物料请求
type MaterialRequest struct {
	Sku  string `json:"sku" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateMaterial 新建物料
// POST /api/v1/wms/materials
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	m := entity.Material{Sku: req.Sku, Name: req.Name}
	if err := h.svc.InsertMaterial(c.Request.Context(), m); err != nil {
		RespondError(c, err)
		return
	}
	Created(c, gin.H{"sku": req.Sku})
}

// UpdateMaterialRequest 物料更新请求
type UpdateMaterialRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateMaterial 更新物料
// PUT /api/v1/wms/materials/:sku
func (h *CatalogHandler) UpdateMaterial(c *gin.Context) {
	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	m := entity.Material{Sku: c.Param("sku"), Name: req.Name}
	if err := h.svc.UpdateMaterial(c.Request.Context(), m); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// DeleteMaterial 删除物料
// DELETE /api/v1/wms/materials/:sku
func (h *CatalogHandler) DeleteMaterial(c *gin.Context) {
	if err := h.svc.DeleteMaterial(c.Request.Context(), c.Param("sku")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// GetMaterial 查询物料
// GET /api/v1/wms/materials/:sku
func (h *CatalogHandler) GetMaterial(c *gin.Context) {
	m, err := h.svc.Material(c.Param("sku"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, m)
}

// ListMaterials 物料列表
// GET /api/v1/wms/materials
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	ms, err := h.svc.Materials()
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": ms})
}
