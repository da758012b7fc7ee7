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

// AssemblyService 工单与装配
type AssemblyService struct {
	set    repository.Set
	ledger *ledger.Ledger
	pub    notify.Publisher
	logger *zap.Logger
}

func NewAssemblyService(set repository.Set, led *ledger.Ledger, pub notify.Publisher, logger *zap.Logger) *AssemblyService {
	return &AssemblyService{set: set, ledger: led, pub: pub, logger: logger}
}

// CreateWorkOrder 创建工单
func (s *AssemblyService) CreateWorkOrder(ctx context.Context, creator string, number uint32, sku string) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.CreateWorkOrder(tx, creator, number, sku)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("工单创建",
		zap.Uint32("work_order", number),
		zap.String("sku", sku),
		zap.String("creator", creator))
	go s.pub.Publish(ev)
	return nil
}

// PrepareStaging 备料：先核SKU汇总量，再全库存FIFO挑选整件移入暂存区
func (s *AssemblyService) PrepareStaging(ctx context.Context, owner, issuer string, number uint32) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.PrepareStagingArea(tx, owner, issuer, number)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("工单备料完成",
		zap.Uint32("work_order", number),
		zap.String("owner", owner))
	go s.pub.Publish(ev)
	return nil
}

// Assemble 装配：按BOM从指定暂存库位精确消耗物料，成品入库
func (s *AssemblyService) Assemble(ctx context.Context, owner, assembler string, number uint32, serial uint32, staging entity.Location) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.AssembleProduct(tx, owner, assembler, number, serial, staging)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("装配完成",
		zap.Uint32("work_order", number),
		zap.String("owner", owner),
		zap.Uint32("serial", serial))
	go s.pub.Publish(ev)
	return nil
}

// WorkOrder 查询工单
func (s *AssemblyService) WorkOrder(number uint32) (*entity.WorkOrder, error) {
	wo, err := s.set.WorkOrders().GetWorkOrder(number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrWorkOrderNotFound
		}
		return nil, err
	}
	return wo, nil
}

// WorkOrders 工单列表
func (s *AssemblyService) WorkOrders() ([]entity.WorkOrder, error) {
	return s.set.WorkOrders().WorkOrders()
}

// AssembledProduct 查询装配成品及其BOM
func (s *AssemblyService) AssembledProduct(owner, sku string, serial uint32) (*entity.AssembledProduct, error) {
	p, err := s.set.WorkOrders().GetAssembled(owner, sku, serial)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrInventoryNotFound
		}
		return nil, err
	}
	return p, nil
}
