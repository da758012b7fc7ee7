package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
)

// 错误定义
var ErrNotFound = errors.New("record not found")

// InventoryRepository 库存四张映射的数据访问：条目、SKU汇总、库位索引、审计/报废记录。
// 纯数据访问，不含业务规则；容量与一致性校验由 ledger 层负责。
type InventoryRepository interface {
	GetItem(owner, sku string, serial uint32) (*entity.Item, error)
	PutItem(item *entity.Item) error
	DeleteItem(owner, sku string, serial uint32) error
	// ItemsBySku 按 (owner, sku) 前缀扫描条目
	ItemsBySku(owner, sku string) ([]entity.Item, error)
	ItemsByOwner(owner string) ([]entity.Item, error)

	// GetTotal 读取 (owner, sku) 汇总数量，不存在返回 ErrNotFound
	GetTotal(owner, sku string) (uint32, error)
	PutTotal(owner, sku string, qty uint32) error
	DeleteTotal(owner, sku string) error

	// 库位索引桶。桶在首次写入时创建，之后即使清空也继续存在（区分"从未建桶"与"空桶"）。
	HasBucket(owner string, loc entity.Location) (bool, error)
	EnsureBucket(owner string, loc entity.Location) error
	BucketLen(owner string, loc entity.Location) (int, error)
	// BucketItems 返回桶内条目快照，按序列号升序
	BucketItems(owner string, loc entity.Location) ([]entity.Item, error)
	PutBucketItem(owner string, loc entity.Location, item entity.Item) error
	DeleteBucketItem(owner string, loc entity.Location, serial uint32) error

	// AppendAdjust 追加审计记录并填充该条目键下的单调递增 Seq
	AppendAdjust(rec *entity.AdjustRecord) error
	AdjustTrail(owner, sku string, serial uint32) ([]entity.AdjustRecord, error)

	PutScrap(rec *entity.ScrapRecord) error
	ScrapRecords(owner string) ([]entity.ScrapRecord, error)
}

// CatalogRepository 配方与物料主数据
type CatalogRepository interface {
	GetRecipe(sku string) (*entity.Recipe, error)
	PutRecipe(r *entity.Recipe) error
	Recipes() ([]entity.Recipe, error)

	GetMaterial(sku string) (*entity.Material, error)
	PutMaterial(m *entity.Material) error
	DeleteMaterial(sku string) error
	Materials() ([]entity.Material, error)
}

// WorkOrderRepository 工单与装配成品
type WorkOrderRepository interface {
	GetWorkOrder(number uint32) (*entity.WorkOrder, error)
	PutWorkOrder(wo *entity.WorkOrder) error
	WorkOrders() ([]entity.WorkOrder, error)

	PutAssembled(p *entity.AssembledProduct) error
	GetAssembled(owner, sku string, serial uint32) (*entity.AssembledProduct, error)
}

// Set 仓库集合。Atomically 提供"要么全部落库、要么全部回滚"的事务边界：
// 传入的回调拿到的是绑定在同一事务上的 Set，回调返回错误则整组写入不可见。
type Set interface {
	Inventory() InventoryRepository
	Catalog() CatalogRepository
	WorkOrders() WorkOrderRepository
	Atomically(ctx context.Context, fn func(Set) error) error
}
