package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bitfantasy/nimo-wms/internal/wms/entity"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
)

func TestUpsertRecipeValidation(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	base := entity.Recipe{
		Sku:            "WIDGET",
		RecipeID:       1,
		OutputQuantity: 1,
		RequiredComponents: []entity.RecipeComponent{
			{Sku: "BOLT-M8", Qty: 4},
		},
	}

	tooMany := base
	tooMany.RequiredComponents = nil
	for i := 0; i <= entity.MaxBomLines; i++ {
		tooMany.RequiredComponents = append(tooMany.RequiredComponents,
			entity.RecipeComponent{Sku: fmt.Sprintf("C-%03d", i), Qty: 1})
	}
	if _, err := l.UpsertRecipe(s, tooMany); !errors.Is(err, ErrStorageOverflow) {
		t.Errorf("Expected ErrStorageOverflow for %d components, got %v", len(tooMany.RequiredComponents), err)
	}

	empty := base
	empty.RequiredComponents = nil
	if _, err := l.UpsertRecipe(s, empty); !errors.Is(err, ErrBomConstructIssue) {
		t.Errorf("Expected ErrBomConstructIssue for empty components, got %v", err)
	}

	noOutput := base
	noOutput.OutputQuantity = 0
	if _, err := l.UpsertRecipe(s, noOutput); !errors.Is(err, ErrBomConstructIssue) {
		t.Errorf("Expected ErrBomConstructIssue for zero output, got %v", err)
	}

	zeroQty := base
	zeroQty.RequiredComponents = []entity.RecipeComponent{{Sku: "BOLT-M8", Qty: 0}}
	if _, err := l.UpsertRecipe(s, zeroQty); !errors.Is(err, ErrBomConstructIssue) {
		t.Errorf("Expected ErrBomConstructIssue for zero component qty, got %v", err)
	}

	badSku := base
	badSku.RequiredComponents = []entity.RecipeComponent{{Sku: "COMPONENT-SKU-TOO-LONG", Qty: 1}}
	if _, err := l.UpsertRecipe(s, badSku); !errors.Is(err, ErrInvalidSkuLength) {
		t.Errorf("Expected ErrInvalidSkuLength, got %v", err)
	}

	if _, err := l.UpsertRecipe(s, base); err != nil {
		t.Fatalf("UpsertRecipe failed: %v", err)
	}

	// Same sku replaces wholesale
	replacement := base
	replacement.RecipeID = 2
	replacement.RequiredComponents = []entity.RecipeComponent{{Sku: "NUT-M8", Qty: 8}}
	if _, err := l.UpsertRecipe(s, replacement); err != nil {
		t.Fatalf("UpsertRecipe replace failed: %v", err)
	}
	got, err := s.Catalog().GetRecipe("WIDGET")
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if got.RecipeID != 2 || len(got.RequiredComponents) != 1 || got.RequiredComponents[0].Sku != "NUT-M8" {
		t.Errorf("Expected replaced recipe, got %+v", got)
	}
}

func TestMaterialLifecycle(t *testing.T) {
	l := newTestLedger()
	s := repository.NewMemorySet()

	m := entity.Material{Sku: "BOLT-M8", Name: "M8六角螺栓"}
	if _, err := l.InsertMaterial(s, m); err != nil {
		t.Fatalf("InsertMaterial failed: %v", err)
	}
	if _, err := l.InsertMaterial(s, m); !errors.Is(err, ErrMaterialAlreadyExists) {
		t.Errorf("Expected ErrMaterialAlreadyExists, got %v", err)
	}

	if _, err := l.UpdateMaterial(s, entity.Material{Sku: "NUT-M8", Name: "x"}); !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound on update, got %v", err)
	}
	if _, err := l.UpdateMaterial(s, entity.Material{Sku: "BOLT-M8", Name: "M8螺栓 镀锌"}); err != nil {
		t.Fatalf("UpdateMaterial failed: %v", err)
	}
	got, _ := s.Catalog().GetMaterial("BOLT-M8")
	if got.Name != "M8螺栓 镀锌" {
		t.Errorf("Expected updated name, got %s", got.Name)
	}
	if got.CreatedAt.After(got.UpdatedAt) {
		t.Errorf("Expected created_at <= updated_at")
	}

	if _, err := l.DeleteMaterial(s, "NUT-M8"); !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("Expected ErrMaterialNotFound on delete, got %v", err)
	}
	if _, err := l.DeleteMaterial(s, "BOLT-M8"); err != nil {
		t.Fatalf("DeleteMaterial failed: %v", err)
	}
	if _, err := s.Catalog().GetMaterial("BOLT-M8"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected material gone, got %v", err)
	}
}
