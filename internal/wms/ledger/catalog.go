package ledger

import (
	"errors"
	"time"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

// UpsertRecipe 写入配方，同SKU整体替换。已创建的工单持有旧配方快照，不受影响。
func (l *Ledger) UpsertRecipe(s repository.Set, recipe entity.Recipe) (Event, error) {
	if !validSku(recipe.Sku) {
		return Event{}, ErrInvalidSkuLength
	}
	if len(recipe.RequiredComponents) > entity.MaxBomLines {
		return Event{}, ErrStorageOverflow
	}
	if len(recipe.RequiredComponents) == 0 || recipe.OutputQuantity == 0 {
		return Event{}, ErrBomConstructIssue
	}
	for _, c := range recipe.RequiredComponents {
		if !validSku(c.Sku) {
			return Event{}, ErrInvalidSkuLength
		}
		if c.Qty == 0 {
			return Event{}, ErrBomConstructIssue
		}
	}
	recipe.UpdatedAt = time.Unix(0, l.now())
	if err := s.Catalog().PutRecipe(&recipe); err != nil {
		return Event{}, err
	}
	return Event{
		Type: EventRecipeAdded,
		Data: map[string]any{
			"sku":        recipe.Sku,
			"recipe_id":  recipe.RecipeID,
			"components": len(recipe.RequiredComponents),
		},
	}, nil
}

// InsertMaterial 新建物料，SKU已存在则拒绝
func (l *Ledger) InsertMaterial(s repository.Set, m entity.Material) (Event, error) {
	if !validSku(m.Sku) {
		return Event{}, ErrInvalidSkuLength
	}
	cat := s.Catalog()
	if _, err := cat.GetMaterial(m.Sku); err == nil {
		return Event{}, ErrMaterialAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Event{}, err
	}
	m.CreatedAt = time.Unix(0, l.now())
	m.UpdatedAt = m.CreatedAt
	if err := cat.PutMaterial(&m); err != nil {
		return Event{}, err
	}
	return Event{Type: EventMaterialAdded, Data: map[string]any{"sku": m.Sku}}, nil
}

// UpdateMaterial 更新已有物料
func (l *Ledger) UpdateMaterial(s repository.Set, m entity.Material) (Event, error) {
	if !validSku(m.Sku) {
		return Event{}, ErrInvalidSkuLength
	}
	cat := s.Catalog()
	old, err := cat.GetMaterial(m.Sku)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrMaterialNotFound
		}
		return Event{}, err
	}
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = time.Unix(0, l.now())
	if err := cat.PutMaterial(&m); err != nil {
		return Event{}, err
	}
	return Event{Type: EventMaterialUpdated, Data: map[string]any{"sku": m.Sku}}, nil
}

// DeleteMaterial 删除物料主数据。不清理既有库存条目，仅移除目录项。
func (l *Ledger) DeleteMaterial(s repository.Set, sku string) (Event, error) {
	cat := s.Catalog()
	if _, err := cat.GetMaterial(sku); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Event{}, ErrMaterialNotFound
		}
		return Event{}, err
	}
	if err := cat.DeleteMaterial(sku); err != nil {
		return Event{}, err
	}
	return Event{Type: EventMaterialDeleted, Data: map[string]any{"sku": sku}}, nil
}
