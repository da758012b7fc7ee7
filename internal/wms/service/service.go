package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/ledger"
	"github.com/bitfantasy/nimo-wms/internal/wms/notify"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

// Services 业务服务集合
type Services struct {
	Inventory *InventoryService
	Catalog   *CatalogService
	Assembly  *AssemblyService
}

func NewServices(set repository.Set, pub notify.Publisher, logger *zap.Logger) *Services {
	led := ledger.New()
	return &Services{
		Inventory: NewInventoryService(set, led, pub, logger),
		Catalog:   NewCatalogService(set, led, pub, logger),
		Assembly:  NewAssemblyService(set, led, pub, logger),
	}
}

// InventoryService 库存操作。写操作全部跑在事务里，提交后异步广播事件。
type InventoryService struct {
	set    repository.Set
	ledger *ledger.Ledger
	pub    notify.Publisher
	logger *zap.Logger
}

func NewInventoryService(set repository.Set, led *ledger.Ledger, pub notify.Publisher, logger *zap.Logger) *InventoryService {
	return &InventoryService{set: set, ledger: led, pub: pub, logger: logger}
}

// Insert 新条目入库
func (s *InventoryService) Insert(ctx context.Context, item entity.Item) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.InsertItem(tx, item)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("库存入库",
		zap.String("owner", item.Owner),
		zap.String("sku", item.Sku),
		zap.Uint32("serial", item.SerialNumber),
		zap.Uint32("qty", item.Qty))
	go s.pub.Publish(ev)
	return nil
}

// Scrap 报废条目
func (s *InventoryService) Scrap(ctx context.Context, owner, sku string, serial uint32, details entity.ScrapDetails) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.ScrapItem(tx, owner, sku, serial, details)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("库存报废",
		zap.String("owner", owner),
		zap.String("sku", sku),
		zap.Uint32("serial", serial),
		zap.String("reason", details.Reason))
	go s.pub.Publish(ev)
	return nil
}

// Move 整件移库
func (s *InventoryService) Move(ctx context.Context, owner, mover, sku string, serial uint32, to entity.Location, reason string) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.MoveItem(tx, owner, mover, sku, serial, to, reason)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("库存移库",
		zap.String("owner", owner),
		zap.String("sku", sku),
		zap.Uint32("serial", serial),
		zap.String("to", string(to)))
	go s.pub.Publish(ev)
	return nil
}

// Adjust 数量调整
func (s *InventoryService) Adjust(ctx context.Context, owner, issuer, sku string, serial uint32, details entity.AdjustDetails) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.AdjustItem(tx, owner, issuer, sku, serial, details)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("库存调整",
		zap.String("owner", owner),
		zap.String("sku", sku),
		zap.Uint32("serial", serial),
		zap.String("type", string(details.Type)))
	go s.pub.Publish(ev)
	return nil
}

// Item 查询单条
func (s *InventoryService) Item(owner, sku string, serial uint32) (*entity.Item, error) {
	item, err := s.set.Inventory().GetItem(owner, sku, serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrInventoryNotFound
		}
		return nil, err
	}
	return item, nil
}

// ItemsBySku 按SKU列出条目
func (s *InventoryService) ItemsBySku(owner, sku string) ([]entity.Item, error) {
	return s.set.Inventory().ItemsBySku(owner, sku)
}

// ItemsByOwner 列出某货主全部条目
func (s *InventoryService) ItemsByOwner(owner string) ([]entity.Item, error) {
	return s.set.Inventory().ItemsByOwner(owner)
}

// StockLevel SKU汇总数量，无记录视为0
func (s *InventoryService) StockLevel(owner, sku string) (uint32, error) {
	total, err := s.set.Inventory().GetTotal(owner, sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// ItemsAt 按库位列出条目。未知库位报错，从未建桶的库位返回空
func (s *InventoryService) ItemsAt(owner string, loc entity.Location) ([]entity.Item, error) {
	if !loc.Valid() {
		return nil, ledger.ErrLocationNotFound
	}
	items, err := s.set.Inventory().BucketItems(owner, loc)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []entity.Item{}, nil
		}
		return nil, err
	}
	return items, nil
}

// AdjustTrail 条目调整审计流水
func (s *InventoryService) AdjustTrail(owner, sku string, serial uint32) ([]entity.AdjustRecord, error) {
	return s.set.Inventory().AdjustTrail(owner, sku, serial)
}

// ScrapRecords 报废记录
func (s *InventoryService) ScrapRecords(owner string) ([]entity.ScrapRecord, error) {
	return s.set.Inventory().ScrapRecords(owner)
}
