package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexphommasathit/policyqa/model"
)

func TestInsertDocument(t *testing.T) {
	documents, _ := initHandlers(t)

	t.Run("Insert document fills generated fields", func(t *testing.T) {
		doc := &model.Document{
			Title:    "Leave Policy",
			FilePath: "policies/leave-policy.pdf",
			FileType: model.FileTypePDF,
		}

		err := documents.InsertDocument(doc)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, doc.ID)
		assert.Equal(t, model.StatusDraft, doc.Status, "Status should default to draft")
		assert.Equal(t, 1, doc.Version, "Version should default to 1")
		assert.False(t, doc.CreatedAt.IsZero())

		// Cleanup
		require.NoError(t, documents.DeleteDocument(doc.ID))
	})
}

func TestSelectDocument(t *testing.T) {
	documents, _ := initHandlers(t)

	doc := &model.Document{
		Title:    "Privacy Policy",
		Status:   model.StatusPublished,
		FilePath: "policies/privacy.docx",
		FileType: model.FileTypeDOCX,
	}
	require.NoError(t, documents.InsertDocument(doc))
	defer documents.DeleteDocument(doc.ID)

	t.Run("Select existing document", func(t *testing.T) {
		got, err := documents.SelectDocument(doc.ID)

		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, "Privacy Policy", got.Title)
		assert.Equal(t, model.StatusPublished, got.Status)
		assert.Equal(t, model.FileTypeDOCX, got.FileType)
		assert.Nil(t, got.EffectiveDate)
	})

	t.Run("Select missing document returns not found", func(t *testing.T) {
		_, err := documents.SelectDocument(uuid.New())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestSelectAllDocuments(t *testing.T) {
	documents, _ := initHandlers(t)

	first := &model.Document{Title: "First", FileType: model.FileTypePDF}
	second := &model.Document{Title: "Second", FileType: model.FileTypePDF}
	require.NoError(t, documents.InsertDocument(first))
	require.NoError(t, documents.InsertDocument(second))
	defer documents.DeleteDocument(first.ID)
	defer documents.DeleteDocument(second.ID)

	t.Run("Returns all inserted documents", func(t *testing.T) {
		docs, err := documents.SelectAllDocuments()

		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})
}

func TestUpdateDocumentStatus(t *testing.T) {
	documents, _ := initHandlers(t)

	doc := &model.Document{Title: "Remote Work Policy", FileType: model.FileTypePDF}
	require.NoError(t, documents.InsertDocument(doc))
	defer documents.DeleteDocument(doc.ID)

	t.Run("Transition draft to published", func(t *testing.T) {
		updated, err := documents.UpdateDocumentStatus(doc.ID, model.StatusPublished)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPublished, updated.Status)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
	})

	t.Run("Transition missing document returns not found", func(t *testing.T) {
		_, err := documents.UpdateDocumentStatus(uuid.New(), model.StatusArchived)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestDeleteDocument(t *testing.T) {
	documents, chunks := initHandlers(t)

	t.Run("Delete cascades to chunks", func(t *testing.T) {
		doc := &model.Document{Title: "Expiring Policy", FileType: model.FileTypePDF}
		require.NoError(t, documents.InsertDocument(doc))

		err := chunks.ReplaceDocumentChunks(context.Background(), doc.ID, []*model.Chunk{
			{Text: "some policy text", Metadata: model.ChunkMetadata{DocumentTitle: doc.Title, ChunkNumber: 1, TotalChunks: 1}},
		})
		require.NoError(t, err)

		require.NoError(t, documents.DeleteDocument(doc.ID))

		count, err := chunks.CountChunksByDocument(doc.ID)
		require.NoError(t, err)
		assert.Zero(t, count, "Chunks should be removed with their document")

		_, err = documents.SelectDocument(doc.ID)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}
