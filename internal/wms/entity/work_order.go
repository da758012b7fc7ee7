package entity

import "time"

// WorkOrderStatus 工单状态，只允许 CREATED → STAGED → ASSEMBLED 顺序流转
const (
	WOStatusCreated   = "CREATED"
	WOStatusStaged    = "STAGED"
	WOStatusAssembled = "ASSEMBLED"
)

// WorkOrder 生产工单，工单号唯一。配方在创建时固化为快照。
type WorkOrder struct {
	WorkOrderNumber uint32    `json:"work_order_number" gorm:"primaryKey"`
	Recipe          Recipe    `json:"recipe" gorm:"type:jsonb;serializer:json"`
	Status          string    `json:"status" gorm:"size:16;not null;default:CREATED"`
	Staged          []Item    `json:"staged,omitempty" gorm:"type:jsonb;serializer:json"` // 备料时整件移入暂存区的条目快照
	CreatedBy       string    `json:"created_by" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (WorkOrder) TableName() string {
	return "wms_work_orders"
}

// Bom 单次装配实际消耗的物理条目清单，行上的Qty为该行消耗量
type Bom struct {
	Materials []Item `json:"materials"`
}

// AssembledProduct 装配成品与其BOM，键为 (owner, sku, serial_number)
type AssembledProduct struct {
	Owner        string    `json:"owner" gorm:"size:64;not null;uniqueIndex:idx_wms_assembled_key,priority:1"`
	Sku          string    `json:"sku" gorm:"size:16;not null;uniqueIndex:idx_wms_assembled_key,priority:2"`
	SerialNumber uint32    `json:"serial_number" gorm:"not null;uniqueIndex:idx_wms_assembled_key,priority:3"`
	WorkOrder    uint32    `json:"work_order_number" gorm:"not null;index"`
	Item         Item      `json:"item" gorm:"type:jsonb;serializer:json"`
	Bom          Bom       `json:"bom" gorm:"type:jsonb;serializer:json"`
	AssembledAt  time.Time `json:"assembled_at"`
}

func (AssembledProduct) TableName() string {
	return "wms_assembled_products"
}
