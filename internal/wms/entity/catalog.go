package entity

import "time"

// 配方组件与BOM行数上限
const MaxBomLines = 100

// Material 物料主数据，SKU唯一
type Material struct {
	Sku       string    `json:"sku" gorm:"primaryKey;size:16"`
	Name      string    `json:"name" gorm:"size:128"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "wms_materials"
}

// RecipeComponent 配方组件需求
type RecipeComponent struct {
	Sku string `json:"sku"`
	Qty uint32 `json:"qty"`
}

// Recipe 装配配方。被工单引用后以快照形式固化，目录中可整体替换。
type Recipe struct {
	Sku                string            `json:"sku" gorm:"primaryKey;size:16"`
	RecipeID           uint32            `json:"recipe_id"`
	InsertedBy         string            `json:"inserted_by" gorm:"size:64"`
	RequiredComponents []RecipeComponent `json:"required_components" gorm:"type:jsonb;serializer:json"`
	RequiredEquipment  string            `json:"required_equipment" gorm:"size:32"`
	OutputQuantity     uint32            `json:"output_quantity"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (Recipe) TableName() string {
	return "wms_recipes"
}
