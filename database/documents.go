package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
	loadSql "github.com/alexphommasathit/policyqa/sql"
)

// ErrDocumentNotFound is returned when a document id does not exist
var ErrDocumentNotFound = errors.New("document not found")

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.Document) error
	SelectDocument(id uuid.UUID) (*model.Document, error)
	SelectAllDocuments() ([]*model.Document, error)
	UpdateDocumentStatus(id uuid.UUID, status model.DocumentStatus) (*model.Document, error)
	DeleteDocument(id uuid.UUID) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		return helper.NewError("initialize documents table", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a new document and fills in the generated fields
func (h *DocumentsDBHandler) InsertDocument(doc *model.Document) error {
	if doc.Status == "" {
		doc.Status = model.StatusDraft
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2, $3, $4, $5, $6, $7)`,
		doc.Title,
		doc.Status,
		doc.FilePath,
		doc.FileType,
		doc.Version,
		doc.EffectiveDate,
		doc.ReviewDate,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by id
func (h *DocumentsDBHandler) SelectDocument(id uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		id,
	)

	doc := &model.Document{}
	err := scanDocument(row, doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("select document", fmt.Errorf("%w: %s", ErrDocumentNotFound, id))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves all documents, newest first
func (h *DocumentsDBHandler) SelectAllDocuments() ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_documents()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		if err := scanDocument(rows, doc); err != nil {
			return nil, helper.NewError("scan", err)
		}
		docs = append(docs, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return docs, nil
}

// UpdateDocumentStatus transitions a document to a new lifecycle status
func (h *DocumentsDBHandler) UpdateDocumentStatus(id uuid.UUID, status model.DocumentStatus) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_document_status($1, $2)`,
		id,
		status,
	)

	doc := &model.Document{}
	err := scanDocument(row, doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("update document status", fmt.Errorf("%w: %s", ErrDocumentNotFound, id))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	h.db.Logger.Info("Updated document status",
		slog.String("document_id", id.String()),
		slog.String("status", string(status)))

	return doc, nil
}

// DeleteDocument deletes a document. Its chunks are removed by the
// ON DELETE CASCADE constraint.
func (h *DocumentsDBHandler) DeleteDocument(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner, doc *model.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Status,
		&doc.FilePath,
		&doc.FileType,
		&doc.Version,
		&doc.EffectiveDate,
		&doc.ReviewDate,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}
