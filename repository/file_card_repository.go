package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"tshirt-bundle/models"
)

// cardsFile is the on-disk layout: cards grouped by bundle ID
//
//	bundles:
//	  tshirt-bundle:
//	    - productId: "1001"
//	      variantId: "2001"
//	      ...
type cardsFile struct {
	Bundles map[string][]models.Card `yaml:"bundles"`
}

// FileCardRepository serves cards from a YAML file, read once on first use
type FileCardRepository struct {
	path    string
	once    sync.Once
	bundles map[string][]models.Card
	err     error
}

// NewFileCardRepository creates a repository over the YAML file at path
func NewFileCardRepository(path string) *FileCardRepository {
	return &FileCardRepository{path: path}
}

// Ensure FileCardRepository implements CardRepositoryInterface
var _ CardRepositoryInterface = (*FileCardRepository)(nil)

func (r *FileCardRepository) ListCards(ctx context.Context, bundleID string) ([]models.Card, error) {
	r.once.Do(func() {
		data, err := os.ReadFile(r.path)
		if err != nil {
			r.err = fmt.Errorf("failed to read cards file: %w", err)
			return
		}
		r.bundles, r.err = ParseCards(data)
	})
	if r.err != nil {
		return nil, r.err
	}
	return copyCards(r.bundles[bundleID]), nil
}

// ParseCards decodes the YAML cards layout
func ParseCards(data []byte) (map[string][]models.Card, error) {
	var file cardsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode cards file: %w", err)
	}
	for id, cards := range file.Bundles {
		for i, c := range cards {
			if c.ProductID == "" || c.DefaultVariantID == "" {
				return nil, fmt.Errorf("bundle %s card %d: productId and variantId are required", id, i)
			}
			if c.VariantCount == 0 {
				file.Bundles[id][i].VariantCount = 1
			}
		}
	}
	return file.Bundles, nil
}

// StaticCardRepository serves a fixed list of cards for every bundle
type StaticCardRepository struct {
	Cards []models.Card
}

var _ CardRepositoryInterface = (*StaticCardRepository)(nil)

func (r *StaticCardRepository) ListCards(ctx context.Context, bundleID string) ([]models.Card, error) {
	return copyCards(r.Cards), nil
}

func copyCards(cards []models.Card) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	return out
}
