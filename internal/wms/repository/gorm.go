package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
)

// skuTotal (owner, sku) 数量汇总行
type skuTotal struct {
	Owner string `gorm:"size:64;not null;uniqueIndex:idx_wms_sku_totals_key,priority:1"`
	Sku   string `gorm:"size:16;not null;uniqueIndex:idx_wms_sku_totals_key,priority:2"`
	Qty   uint32 `gorm:"not null"`
}

func (skuTotal) TableName() string { return "wms_sku_totals" }

// locationBucket 桶存在性标记行，与桶内条目分表存储
type locationBucket struct {
	Owner     string `gorm:"size:64;not null;uniqueIndex:idx_wms_location_buckets_key,priority:1"`
	Location  string `gorm:"size:20;not null;uniqueIndex:idx_wms_location_buckets_key,priority:2"`
	CreatedAt time.Time
}

func (locationBucket) TableName() string { return "wms_location_buckets" }

// locationEntry 库位索引桶内的条目
type locationEntry struct {
	Owner        string      `gorm:"size:64;not null;uniqueIndex:idx_wms_location_items_key,priority:1"`
	Location     string      `gorm:"size:20;not null;uniqueIndex:idx_wms_location_items_key,priority:2"`
	SerialNumber uint32      `gorm:"not null;uniqueIndex:idx_wms_location_items_key,priority:3"`
	Item         entity.Item `gorm:"type:jsonb;serializer:json"`
}

func (locationEntry) TableName() string { return "wms_location_items" }

// AutoMigrate 建表/迁移
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Item{},
		&entity.AdjustRecord{},
		&entity.ScrapRecord{},
		&entity.Material{},
		&entity.Recipe{},
		&entity.WorkOrder{},
		&entity.AssembledProduct{},
		&skuTotal{},
		&locationBucket{},
		&locationEntry{},
	)
}

// GormSet PostgreSQL实现。Atomically 映射到数据库事务。
type GormSet struct {
	db *gorm.DB
}

func NewGormSet(db *gorm.DB) *GormSet {
	return &GormSet{db: db}
}

func (g *GormSet) Inventory() InventoryRepository  { return &gormInventory{g.db} }
func (g *GormSet) Catalog() CatalogRepository      { return &gormCatalog{g.db} }
func (g *GormSet) WorkOrders() WorkOrderRepository { return &gormWorkOrders{g.db} }

func (g *GormSet) Atomically(ctx context.Context, fn func(Set) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormSet{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---- 库存 ----

type gormInventory struct {
	db *gorm.DB
}

func (r *gormInventory) GetItem(owner, sku string, serial uint32) (*entity.Item, error) {
	var it entity.Item
	err := r.db.Where("owner = ? AND sku = ? AND serial_number = ?", owner, sku, serial).
		First(&it).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *gormInventory) PutItem(item *entity.Item) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "sku"}, {Name: "serial_number"}},
		UpdateAll: true,
	}).Create(item).Error
}

func (r *gormInventory) DeleteItem(owner, sku string, serial uint32) error {
	return r.db.Where("owner = ? AND sku = ? AND serial_number = ?", owner, sku, serial).
		Delete(&entity.Item{}).Error
}

func (r *gormInventory) ItemsBySku(owner, sku string) ([]entity.Item, error) {
	out := []entity.Item{}
	err := r.db.Where("owner = ? AND sku = ?", owner, sku).
		Order("serial_number ASC").Find(&out).Error
	return out, err
}

func (r *gormInventory) ItemsByOwner(owner string) ([]entity.Item, error) {
	out := []entity.Item{}
	err := r.db.Where("owner = ?", owner).
		Order("sku ASC, serial_number ASC").Find(&out).Error
	return out, err
}

func (r *gormInventory) GetTotal(owner, sku string) (uint32, error) {
	var row skuTotal
	err := r.db.Where("owner = ? AND sku = ?", owner, sku).First(&row).Error
	if err != nil {
		return 0, notFound(err)
	}
	return row.Qty, nil
}

func (r *gormInventory) PutTotal(owner, sku string, qty uint32) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"qty"}),
	}).Create(&skuTotal{Owner: owner, Sku: sku, Qty: qty}).Error
}

func (r *gormInventory) DeleteTotal(owner, sku string) error {
	return r.db.Where("owner = ? AND sku = ?", owner, sku).Delete(&skuTotal{}).Error
}

func (r *gormInventory) HasBucket(owner string, loc entity.Location) (bool, error) {
	var count int64
	err := r.db.Model(&locationBucket{}).
		Where("owner = ? AND location = ?", owner, string(loc)).Count(&count).Error
	return count > 0, err
}

func (r *gormInventory) EnsureBucket(owner string, loc entity.Location) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&locationBucket{Owner: owner, Location: string(loc)}).Error
}

func (r *gormInventory) BucketLen(owner string, loc entity.Location) (int, error) {
	var count int64
	err := r.db.Model(&locationEntry{}).
		Where("owner = ? AND location = ?", owner, string(loc)).Count(&count).Error
	return int(count), err
}

func (r *gormInventory) BucketItems(owner string, loc entity.Location) ([]entity.Item, error) {
	ok, err := r.HasBucket(owner, loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var rows []locationEntry
	err = r.db.Where("owner = ? AND location = ?", owner, string(loc)).
		Order("serial_number ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Item)
	}
	return out, nil
}

func (r *gormInventory) PutBucketItem(owner string, loc entity.Location, item entity.Item) error {
	if err := r.EnsureBucket(owner, loc); err != nil {
		return err
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "location"}, {Name: "serial_number"}},
		UpdateAll: true,
	}).Create(&locationEntry{
		Owner:        owner,
		Location:     string(loc),
		SerialNumber: item.SerialNumber,
		Item:         item,
	}).Error
}

func (r *gormInventory) DeleteBucketItem(owner string, loc entity.Location, serial uint32) error {
	return r.db.Where("owner = ? AND location = ? AND serial_number = ?", owner, string(loc), serial).
		Delete(&locationEntry{}).Error
}

func (r *gormInventory) AppendAdjust(rec *entity.AdjustRecord) error {
	var maxSeq uint64
	err := r.db.Model(&entity.AdjustRecord{}).
		Where("owner = ? AND sku = ? AND serial_number = ?", rec.Owner, rec.Sku, rec.SerialNumber).
		Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error
	if err != nil {
		return err
	}
	rec.Seq = maxSeq + 1
	return r.db.Create(rec).Error
}

func (r *gormInventory) AdjustTrail(owner, sku string, serial uint32) ([]entity.AdjustRecord, error) {
	out := []entity.AdjustRecord{}
	err := r.db.Where("owner = ? AND sku = ? AND serial_number = ?", owner, sku, serial).
		Order("seq ASC").Find(&out).Error
	return out, err
}

func (r *gormInventory) PutScrap(rec *entity.ScrapRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "sku"}, {Name: "serial_number"}},
		UpdateAll: true,
	}).Create(rec).Error
}

func (r *gormInventory) ScrapRecords(owner string) ([]entity.ScrapRecord, error) {
	out := []entity.ScrapRecord{}
	err := r.db.Where("owner = ?", owner).
		Order("sku ASC, serial_number ASC").Find(&out).Error
	return out, err
}

// ---- 主数据 ----

type gormCatalog struct {
	db *gorm.DB
}

func (r *gormCatalog) GetRecipe(sku string) (*entity.Recipe, error) {
	var rec entity.Recipe
	if err := r.db.Where("sku = ?", sku).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *gormCatalog) PutRecipe(rec *entity.Recipe) error {
	return r.db.Save(rec).Error
}

func (r *gormCatalog) Recipes() ([]entity.Recipe, error) {
	out := []entity.Recipe{}
	err := r.db.Order("sku ASC").Find(&out).Error
	return out, err
}

func (r *gormCatalog) GetMaterial(sku string) (*entity.Material, error) {
	var m entity.Material
	if err := r.db.Where("sku = ?", sku).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *gormCatalog) PutMaterial(m *entity.Material) error {
	return r.db.Save(m).Error
}

func (r *gormCatalog) DeleteMaterial(sku string) error {
	return r.db.Where("sku = ?", sku).Delete(&entity.Material{}).Error
}

func (r *gormCatalog) Materials() ([]entity.Material, error) {
	out := []entity.Material{}
	err := r.db.Order("sku ASC").Find(&out).Error
	return out, err
}

// ---- 工单 ----

type gormWorkOrders struct {
	db *gorm.DB
}

func (r *gormWorkOrders) GetWorkOrder(number uint32) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	if err := r.db.Where("work_order_number = ?", number).First(&wo).Error; err != nil {
		return nil, notFound(err)
	}
	return &wo, nil
}

func (r *gormWorkOrders) PutWorkOrder(wo *entity.WorkOrder) error {
	return r.db.Save(wo).Error
}

func (r *gormWorkOrders) WorkOrders() ([]entity.WorkOrder, error) {
	out := []entity.WorkOrder{}
	err := r.db.Order("work_order_number ASC").Find(&out).Error
	return out, err
}

func (r *gormWorkOrders) PutAssembled(p *entity.AssembledProduct) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "sku"}, {Name: "serial_number"}},
		UpdateAll: true,
	}).Create(p).Error
}

func (r *gormWorkOrders) GetAssembled(owner, sku string, serial uint32) (*entity.AssembledProduct, error) {
	var p entity.AssembledProduct
	err := r.db.Where("owner = ? AND sku = ? AND serial_number = ?", owner, sku, serial).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
