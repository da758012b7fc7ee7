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

// CatalogService 配方与物料主数据
type CatalogService struct {
	set    repository.Set
	ledger *ledger.Ledger
	pub    notify.Publisher
	logger *zap.Logger
}

func NewCatalogService(set repository.Set, led *ledger.Ledger, pub notify.Publisher, logger *zap.Logger) *CatalogService {
	return &CatalogService{set: set, ledger: led, pub: pub, logger: logger}
}

// UpsertRecipe 写入配方，同SKU整体替换
func (s *CatalogService) UpsertRecipe(ctx context.Context, recipe entity.Recipe) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.UpsertRecipe(tx, recipe)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("配方写入",
		zap.String("sku", recipe.Sku),
		zap.Uint32("recipe_id", recipe.RecipeID),
		zap.Int("components", len(recipe.RequiredComponents)))
	go s.pub.Publish(ev)
	return nil
}

// Recipe 查询配方
func (s *CatalogService) Recipe(sku string) (*entity.Recipe, error) {
	return s.set.Catalog().GetRecipe(sku)
}

// Recipes 配方列表
func (s *CatalogService) Recipes() ([]entity.Recipe, error) {
	return s.set.Catalog().Recipes()
}

// InsertMaterial 新建物料
func (s *CatalogService) InsertMaterial(ctx context.Context, m entity.Material) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.InsertMaterial(tx, m)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("物料新建", zap.String("sku", m.Sku), zap.String("name", m.Name))
	go s.pub.Publish(ev)
	return nil
}

// UpdateMaterial 更新物料
func (s *CatalogService) UpdateMaterial(ctx context.Context, m entity.Material) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.UpdateMaterial(tx, m)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("物料更新", zap.String("sku", m.Sku))
	go s.pub.Publish(ev)
	return nil
}

// DeleteMaterial 删除物料
func (s *CatalogService) DeleteMaterial(ctx context.Context, sku string) error {
	var ev ledger.Event
	err := s.set.Atomically(ctx, func(tx repository.Set) error {
		var err error
		ev, err = s.ledger.DeleteMaterial(tx, sku)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("物料删除", zap.String("sku", sku))
	go s.pub.Publish(ev)
	return nil
}

// Material 查询物料
func (s *CatalogService) Material(sku string) (*entity.Material, error) {
	m, err := s.set.Catalog().GetMaterial(sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrMaterialNotFound
		}
		return nil, err
	}
	return m, nil
}

// Materials 物料列表
func (s *CatalogService) Materials() ([]entity.Material, error) {
	return s.set.Catalog().Materials()
}
