package entity

import (
	"time"
)

// SKU与描述字段的编码上限
const (
	MaxSkuLen    = 16
	MaxReasonLen = 128
)

// Location 库位
type Location string

const (
	LocationWarehouse  Location = "WAREHOUSE"
	LocationProduction Location = "PRODUCTION"
	LocationShipping   Location = "SHIPPING"
	LocationReceiving  Location = "RECEIVING"
	LocationScrap      Location = "SCRAP"
	LocationStaging    Location = "STAGING"
	LocationPackaging  Location = "PACKAGING"
)

// Valid 校验库位是否为已知库位
func (l Location) Valid() bool {
	switch l {
	case LocationWarehouse, LocationProduction, LocationShipping,
		LocationReceiving, LocationScrap, LocationStaging, LocationPackaging:
		return true
	}
	return false
}

// AbcCode ABC分类
const (
	AbcCodeA = "A"
	AbcCodeB = "B"
	AbcCodeC = "C"
)

// InventoryType 库存类型
const (
	InvTypeRawMaterial  = "RAW_MATERIAL"
	InvTypeComponent    = "COMPONENT"
	InvTypeWIP          = "WIP"
	InvTypeFinishedGood = "FINISHED_GOOD"
	InvTypeMRO          = "MRO"
	InvTypePackaging    = "PACKAGING_MATERIALS"
	InvTypeSafetyStock  = "SAFETY_ANTICIPATION_STOCK"
	InvTypeDecoupling   = "DECOUPLING"
	InvTypeCycle        = "CYCLE"
	InvTypeService      = "SERVICE"
	InvTypeTransit      = "TRANSIT"
	InvTypeTheoretical  = "THEORETICAL"
	InvTypeExcess       = "EXCESS"
)

// ProductType 产品类型
const (
	ProdTypeCapitalGoods       = "CAPITAL_GOODS"
	ProdTypeRawMaterials       = "RAW_MATERIALS"
	ProdTypeComponentParts     = "COMPONENT_PARTS"
	ProdTypeMajorEquipment     = "MAJOR_EQUIPMENT"
	ProdTypeAccessoryEquipment = "ACCESSORY_EQUIPMENT"
	ProdTypeOperatingSupplies  = "OPERATING_SUPPLIES"
)

// Equipment 搬运/加工设备
const (
	EquipmentForklift   = "FORKLIFT"
	EquipmentCrane      = "CRANE"
	EquipmentConveyor   = "CONVEYOR"
	EquipmentTruck      = "TRUCK"
	EquipmentPalletJack = "PALLET_JACK"
	EquipmentHandTruck  = "HAND_TRUCK"
	EquipmentCart       = "CART"
	EquipmentCrimper    = "CRIMPER"
	EquipmentCutter     = "CUTTER"
	EquipmentPalletizer = "PALLETIZER"
	EquipmentMixer      = "MIXER"
)

// Item 序列化库存记录，身份键为 (owner, sku, serial_number)
type Item struct {
	Owner         string   `json:"owner" gorm:"size:64;not null;uniqueIndex:idx_wms_items_key,priority:1"`
	Sku           string   `json:"sku" gorm:"size:16;not null;uniqueIndex:idx_wms_items_key,priority:2"`
	SerialNumber  uint32   `json:"serial_number" gorm:"not null;uniqueIndex:idx_wms_items_key,priority:3"`
	LotNumber     uint32   `json:"lot_number"`
	Qty           uint32   `json:"qty" gorm:"not null"`
	Location      Location `json:"location" gorm:"size:20;not null;index"`
	MovedBy       string   `json:"moved_by" gorm:"size:64"`
	AbcCode       string   `json:"abc_code" gorm:"size:4"`
	InventoryType string   `json:"inventory_type" gorm:"size:32"`
	ProductType   string   `json:"product_type" gorm:"size:32"`
	WeightLbs     uint32   `json:"weight_lbs"`
	ShelfLife     uint32   `json:"shelf_life"`
	CycleCount    uint32   `json:"cycle_count"`
	CreatedAt     int64    `json:"created_at" gorm:"not null;index"` // 逻辑时间戳，FIFO排序依据
}

func (Item) TableName() string {
	return "wms_items"
}

// AdjustType 调整类型（数量/库位二选一）
type AdjustType string

const (
	AdjustQuantity AdjustType = "QUANTITY"
	AdjustLocation AdjustType = "LOCATION"
)

// AdjustDetails 调整明细。Type为QUANTITY时填数量字段，LOCATION时填库位字段。
type AdjustDetails struct {
	Type             AdjustType `json:"type"`
	OriginalQty      uint32     `json:"original_qty,omitempty"`
	NewQty           uint32     `json:"new_qty,omitempty"`
	OriginalLocation Location   `json:"original_location,omitempty"`
	NewLocation      Location   `json:"new_location,omitempty"`
	Reason           string     `json:"reason"`
}

// AdjustRecord 调整审计记录（追加式，Seq单调递增）
type AdjustRecord struct {
	ID           uint64        `json:"-" gorm:"primaryKey;autoIncrement"`
	Owner        string        `json:"owner" gorm:"size:64;not null;index:idx_wms_adjust_key,priority:1"`
	Sku          string        `json:"sku" gorm:"size:16;not null;index:idx_wms_adjust_key,priority:2"`
	SerialNumber uint32        `json:"serial_number" gorm:"not null;index:idx_wms_adjust_key,priority:3"`
	Seq          uint64        `json:"seq" gorm:"not null"`
	Issuer       string        `json:"issuer" gorm:"size:64;not null"`
	Item         Item          `json:"item" gorm:"type:jsonb;serializer:json"`
	Details      AdjustDetails `json:"details" gorm:"type:jsonb;serializer:json"`
	RecordedAt   time.Time     `json:"recorded_at"`
}

func (AdjustRecord) TableName() string {
	return "wms_adjust_log"
}

// ScrapDetails 报废明细
type ScrapDetails struct {
	Issuer    string `json:"issuer"`
	Reason    string `json:"reason"`
	Equipment string `json:"equipment"`
}

// ScrapRecord 报废记录。报废后条目从活跃库存、库位索引与汇总中移除，不可恢复。
type ScrapRecord struct {
	Owner        string       `json:"owner" gorm:"size:64;not null;uniqueIndex:idx_wms_scrap_key,priority:1"`
	Sku          string       `json:"sku" gorm:"size:16;not null;uniqueIndex:idx_wms_scrap_key,priority:2"`
	SerialNumber uint32       `json:"serial_number" gorm:"not null;uniqueIndex:idx_wms_scrap_key,priority:3"`
	Item         Item         `json:"item" gorm:"type:jsonb;serializer:json"`
	Details      ScrapDetails `json:"details" gorm:"type:jsonb;serializer:json"`
	ScrappedAt   time.Time    `json:"scrapped_at"`
}

func (ScrapRecord) TableName() string {
	return "wms_scrap_items"
}
