package repositories

import (
	"errors"
	"testing"

	"fieldops-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(ids ...int) []models.InventoryInvoiceItem {
	items := make([]models.InventoryInvoiceItem, len(ids))
	for i, id := range ids {
		items[i] = models.InventoryInvoiceItem{ItemID: id, QuantityIssued: 1}
	}
	return items
}

func TestResolveItemNamesAllPresent(t *testing.T) {
	known := map[int]string{1: "Drop Wire Cable 2 core", 4: "Pole Clamp"}
	names, err := resolveItemNames(lines(1, 4), func(id int) (string, bool, error) {
		name, ok := known[id]
		return name, ok, nil
	})
	require.NoError(t, err)
	assert.Equal(t, known, names)
}

func TestResolveItemNamesCollectsEveryMissingID(t *testing.T) {
	known := map[int]string{1: "Drop Wire Cable 2 core"}
	_, err := resolveItemNames(lines(1, 7, 9), func(id int) (string, bool, error) {
		name, ok := known[id]
		return name, ok, nil
	})
	require.Error(t, err)

	var missing *MissingItemsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []int{7, 9}, missing.IDs)
	assert.Contains(t, missing.Error(), "[7 9]")
}

func TestResolveItemNamesDeduplicatesLookups(t *testing.T) {
	// An invoice can carry the same item on several lines (e.g. two drums
	// of the same cable); the existence check runs once per distinct item.
	calls := map[int]int{}
	_, err := resolveItemNames(lines(3, 3, 5, 3), func(id int) (string, bool, error) {
		calls[id]++
		return "x", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{3: 1, 5: 1}, calls)
}

func TestResolveItemNamesPropagatesLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := resolveItemNames(lines(1), func(int) (string, bool, error) {
		return "", false, boom
	})
	assert.ErrorIs(t, err, boom)
}
