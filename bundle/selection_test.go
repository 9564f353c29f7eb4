package bundle

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tshirt-bundle/models"
)

func entry(variantID string) models.SelectionEntry {
	return models.SelectionEntry{VariantID: variantID, ProductID: "p-" + variantID, Title: "Tee " + variantID, PriceCents: 2500}
}

func variantIDs(s *Selection) []string {
	var ids []string
	for _, e := range s.Entries() {
		ids = append(ids, e.VariantID)
	}
	return ids
}

func TestSelection_AddUntilFull(t *testing.T) {
	s := NewSelection(3)

	assert.True(t, s.Add(entry("a")))
	assert.True(t, s.Add(entry("b")))
	assert.False(t, s.IsComplete())
	assert.True(t, s.Add(entry("c")))
	assert.True(t, s.IsComplete())

	assert.False(t, s.Add(entry("d")), "add while full must be a no-op")
	assert.Equal(t, []string{"a", "b", "c"}, variantIDs(s))
	assert.Equal(t, 0, s.Remaining())
}

func TestSelection_DuplicateIsNoop(t *testing.T) {
	s := NewSelection(3)
	require.True(t, s.Add(entry("a")))

	before := s.Entries()
	assert.False(t, s.Add(entry("a")))
	assert.Equal(t, before, s.Entries())
	assert.Equal(t, 1, s.Len())
}

func TestSelection_AddForcesQuantityOne(t *testing.T) {
	s := NewSelection(3)
	e := entry("a")
	e.Quantity = 4
	s.Add(e)
	assert.Equal(t, 1, s.Entries()[0].Quantity)
}

func TestSelection_RemoveAtPreservesOrder(t *testing.T) {
	for p := 0; p < 3; p++ {
		t.Run(fmt.Sprintf("position %d", p), func(t *testing.T) {
			s := NewSelection(3)
			s.Add(entry("a"))
			s.Add(entry("b"))
			s.Add(entry("c"))

			original := variantIDs(s)
			require.True(t, s.RemoveAt(p))

			var want []string
			for i, id := range original {
				if i != p {
					want = append(want, id)
				}
			}
			assert.Equal(t, want, variantIDs(s))
		})
	}
}

func TestSelection_RemoveAtOutOfRange(t *testing.T) {
	s := NewSelection(3)
	s.Add(entry("a"))

	assert.False(t, s.RemoveAt(-1))
	assert.False(t, s.RemoveAt(1))
	assert.Equal(t, 1, s.Len())
}

func TestSelection_RemoveOnlyItem(t *testing.T) {
	s := NewSelection(3)
	s.Add(entry("a"))
	require.True(t, s.RemoveAt(0))

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Entries())
	assert.False(t, s.HasProduct("p-a"))
}

func TestSelection_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for capacity := 1; capacity <= 5; capacity++ {
		s := NewSelection(capacity)
		for step := 0; step < 500; step++ {
			if rng.Intn(3) > 0 {
				s.Add(entry(fmt.Sprintf("v%d", rng.Intn(8))))
			} else {
				s.RemoveAt(rng.Intn(capacity+2) - 1)
			}

			require.GreaterOrEqual(t, s.Len(), 0)
			require.LessOrEqual(t, s.Len(), capacity)
			require.Equal(t, s.Len() == capacity, s.IsComplete())

			seen := map[string]bool{}
			for _, id := range variantIDs(s) {
				require.False(t, seen[id], "variant %s selected twice", id)
				seen[id] = true
			}
		}
	}
}

func TestEntryFromVariant_Title(t *testing.T) {
	card := models.Card{ProductID: "p1", Title: "Classic Tee", Image: "tee.jpg", Thumb: "tee_t.jpg"}

	e := EntryFromVariant(card, models.CatalogVariant{ID: "1", Title: "M / Black", Image: "black.jpg", PriceCents: 2500})
	assert.Equal(t, "Classic Tee – M / Black", e.Title)
	assert.Equal(t, "black.jpg", e.Image)
	assert.Equal(t, "black.jpg", e.Thumb)

	e = EntryFromVariant(card, models.CatalogVariant{ID: "2", Title: models.SentinelOptionValue})
	assert.Equal(t, "Classic Tee", e.Title)
	assert.Equal(t, "tee.jpg", e.Image)
	assert.Equal(t, "tee_t.jpg", e.Thumb)
}
