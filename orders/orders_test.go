package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickscan-service/models"
	"quickscan-service/storage"
)

func testOrder(id, userID string, createdAt time.Time) models.Order {
	return models.Order{
		ID:           id,
		OrderNumber:  "ORD-001",
		CustomerName: "Quick Order",
		CreatedAt:    createdAt,
		Status:       models.StatusPending,
		Total:        10,
		Items: []models.OrderItem{
			{Product: models.Product{ID: "p1", Name: "Tea", Price: 10}, Quantity: 1},
		},
		UserID: userID,
	}
}

func TestListByUser_FiltersAndSortsNewestFirst(t *testing.T) {
	c := New(storage.NewMemStore())
	now := time.Now()
	require.NoError(t, c.Append(testOrder("o1", "alice", now.Add(-2*time.Hour))))
	require.NoError(t, c.Append(testOrder("o2", "bob", now.Add(-time.Hour))))
	require.NoError(t, c.Append(testOrder("o3", "alice", now)))

	list, err := c.ListByUser("alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o3", list[0].ID)
	assert.Equal(t, "o1", list[1].ID)
}

func TestGet_ScopedToOwner(t *testing.T) {
	c := New(storage.NewMemStore())
	require.NoError(t, c.Append(testOrder("o1", "alice", time.Now())))

	got, err := c.Get("o1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = c.Get("o1", "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Get("ghost", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_ScopedToOwner(t *testing.T) {
	c := New(storage.NewMemStore())
	require.NoError(t, c.Append(testOrder("o1", "alice", time.Now())))

	assert.ErrorIs(t, c.UpdateStatus("o1", "bob", models.StatusShipped), ErrNotFound)

	require.NoError(t, c.UpdateStatus("o1", "alice", models.StatusShipped))
	got, err := c.Get("o1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)
}

func TestSetStatus_IgnoresOwner(t *testing.T) {
	c := New(storage.NewMemStore())
	require.NoError(t, c.Append(testOrder("o1", "alice", time.Now())))

	require.NoError(t, c.SetStatus("o1", models.StatusCancelled))
	got, err := c.GetAny("o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}
