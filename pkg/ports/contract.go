package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	docID := "contract-doc-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		data := []byte(`{"version":2,"components":[{"id":"a","type":"div","props":{}}]}`)

		err := store.Save(ctx, docID, data)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.JSONEq(t, string(data), string(loaded))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, []byte(`{"version":2,"components":[]}`)))

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"version":2,"components":[]}`, string(loaded))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, []byte(`{}`)))

		err := store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		require.NoError(t, store.Save(ctx, id1, []byte(`{}`)))
		require.NoError(t, store.Save(ctx, id2, []byte(`{}`)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id1)
		assert.Contains(t, docs, id2)
		assert.NotContains(t, docs, docID)
	})

	t.Run("Independent Copies", func(t *testing.T) {
		id := fmt.Sprintf("%s-copy", docID)
		data := []byte(`{"a":1}`)
		require.NoError(t, store.Save(ctx, id, data))
		defer func() { _ = store.Delete(ctx, id) }()

		data[2] = 'b'
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(loaded))
	})
}
