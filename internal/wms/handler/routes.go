package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/middleware"
)

// RegisterRoutes 注册WMS路由。除健康检查外全部需要JWT认证。
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	v1 := r.Group("/api/v1")

	wms := v1.Group("/wms")
	wms.Use(middleware.JWTAuth(jwtSecret))
	{
		// SSE 实时推送（支持 query param token）
		wms.GET("/events", h.SSE.Stream)

		// 库存
		items := wms.Group("/items")
		{
			items.POST("", h.Inventory.Insert)
			items.GET("", h.Inventory.List)
			items.GET("/:sku/:serial", h.Inventory.Get)
			items.POST("/:sku/:serial/scrap", h.Inventory.Scrap)
			items.POST("/:sku/:serial/move", h.Inventory.Move)
			items.POST("/:sku/:serial/adjust", h.Inventory.Adjust)
			items.GET("/:sku/:serial/audit", h.Inventory.Audit)
		}
		wms.GET("/stock/:sku", h.Inventory.Stock)
		wms.GET("/scrap", h.Inventory.ScrapList)
		wms.GET("/export", h.Export.Export)

		// 配方与物料
		recipes := wms.Group("/recipes")
		{
			recipes.POST("", h.Catalog.UpsertRecipe)
			recipes.GET("", h.Catalog.ListRecipes)
			recipes.GET("/:sku", h.Catalog.GetRecipe)
		}
		materials := wms.Group("/materials")
		{
			materials.POST("", h.Catalog.CreateMaterial)
			materials.GET("", h.Catalog.ListMaterials)
			materials.GET("/:sku", h.Catalog.GetMaterial)
			materials.PUT("/:sku", h.Catalog.UpdateMaterial)
			materials.DELETE("/:sku", h.Catalog.DeleteMaterial)
		}

		// 工单与装配
		workOrders := wms.Group("/work-orders")
		{
			workOrders.POST("", h.Assembly.Create)
			workOrders.GET("", h.Assembly.List)
			workOrders.GET("/:number", h.Assembly.Get)
			workOrders.POST("/:number/stage", h.Assembly.Stage)
			workOrders.POST("/:number/assemble", h.Assembly.Assemble)
		}
		wms.GET("/assembled/:sku/:serial", h.Assembly.GetAssembled)
	}
}
