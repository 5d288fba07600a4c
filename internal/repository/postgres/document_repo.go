package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invodex/internal/domain"
	"invodex/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

// documentRow mirrors the documents table. Structured fields (line items,
// bounding boxes, per-field confidence) are stored as JSONB.
type documentRow struct {
	ID              uuid.UUID       `db:"id"`
	SourceURI       string          `db:"source_uri"`
	FileName        string          `db:"file_name"`
	FileURL         sql.NullString  `db:"file_url"`
	Language        string          `db:"language"`
	DocumentType    string          `db:"document_type"`
	SupplierName    sql.NullString  `db:"supplier_name"`
	InvoiceNumber   sql.NullString  `db:"invoice_number"`
	InvoiceDate     sql.NullString  `db:"invoice_date"`
	Currency        sql.NullString  `db:"currency"`
	Subtotal        sql.NullFloat64 `db:"subtotal"`
	TaxAmount       sql.NullFloat64 `db:"tax_amount"`
	Total           sql.NullFloat64 `db:"total"`
	LineItems       []byte          `db:"line_items"`
	Confidence      sql.NullFloat64 `db:"confidence"`
	PageCount       int             `db:"page_count"`
	BoundingBoxes   []byte          `db:"bounding_boxes"`
	FieldConfidence []byte          `db:"field_confidence"`
	NeedsReview     bool            `db:"needs_review"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func toRow(doc *domain.Document) (*documentRow, error) {
	row := &documentRow{
		ID:           uuid.New(),
		SourceURI:    doc.SourceURI,
		FileName:     doc.FileName,
		Language:     doc.Language,
		DocumentType: string(doc.DocumentType),
		PageCount:    doc.PageCount,
		NeedsReview:  doc.NeedsReview,
	}
	row.FileURL = nullString(doc.FileURL)
	row.SupplierName = nullString(doc.SupplierName)
	row.InvoiceNumber = nullString(doc.InvoiceNumber)
	row.InvoiceDate = nullString(doc.InvoiceDate)
	row.Currency = nullString(doc.Currency)
	row.Subtotal = nullFloat(doc.Subtotal)
	row.TaxAmount = nullFloat(doc.TaxAmount)
	row.Total = nullFloat(doc.Total)
	row.Confidence = nullFloat(doc.Confidence)

	var err error
	if row.LineItems, err = json.Marshal(doc.LineItems); err != nil {
		return nil, fmt.Errorf("marshaling line items: %w", err)
	}
	if row.BoundingBoxes, err = json.Marshal(doc.BoundingBoxes); err != nil {
		return nil, fmt.Errorf("marshaling bounding boxes: %w", err)
	}
	if row.FieldConfidence, err = json.Marshal(doc.FieldConfidence); err != nil {
		return nil, fmt.Errorf("marshaling field confidence: %w", err)
	}
	return row, nil
}

func (r *documentRow) toDomain() (*domain.Document, error) {
	doc := &domain.Document{
		FileName:      r.FileName,
		SourceURI:     r.SourceURI,
		Language:      r.Language,
		DocumentType:  domain.DocumentType(r.DocumentType),
		PageCount:     r.PageCount,
		NeedsReview:   r.NeedsReview,
		FileURL:       strPtr(r.FileURL),
		SupplierName:  strPtr(r.SupplierName),
		InvoiceNumber: strPtr(r.InvoiceNumber),
		InvoiceDate:   strPtr(r.InvoiceDate),
		Currency:      strPtr(r.Currency),
		Subtotal:      floatPtr(r.Subtotal),
		TaxAmount:     floatPtr(r.TaxAmount),
		Total:         floatPtr(r.Total),
		Confidence:    floatPtr(r.Confidence),
	}
	if len(r.LineItems) > 0 {
		if err := json.Unmarshal(r.LineItems, &doc.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshaling line items: %w", err)
		}
	}
	if len(r.BoundingBoxes) > 0 {
		if err := json.Unmarshal(r.BoundingBoxes, &doc.BoundingBoxes); err != nil {
			return nil, fmt.Errorf("unmarshaling bounding boxes: %w", err)
		}
	}
	if len(r.FieldConfidence) > 0 {
		if err := json.Unmarshal(r.FieldConfidence, &doc.FieldConfidence); err != nil {
			return nil, fmt.Errorf("unmarshaling field confidence: %w", err)
		}
	}
	return doc, nil
}

const upsertQuery = `INSERT INTO documents (
	id, source_uri, file_name, file_url, language, document_type,
	supplier_name, invoice_number, invoice_date, currency,
	subtotal, tax_amount, total, line_items,
	confidence, page_count, bounding_boxes, field_confidence,
	needs_review, created_at, updated_at
) VALUES (
	:id, :source_uri, :file_name, :file_url, :language, :document_type,
	:supplier_name, :invoice_number, :invoice_date, :currency,
	:subtotal, :tax_amount, :total, :line_items,
	:confidence, :page_count, :bounding_boxes, :field_confidence,
	:needs_review, :created_at, :updated_at
)
ON CONFLICT (source_uri) DO UPDATE SET
	file_name = EXCLUDED.file_name,
	file_url = EXCLUDED.file_url,
	language = EXCLUDED.language,
	document_type = EXCLUDED.document_type,
	supplier_name = EXCLUDED.supplier_name,
	invoice_number = EXCLUDED.invoice_number,
	invoice_date = EXCLUDED.invoice_date,
	currency = EXCLUDED.currency,
	subtotal = EXCLUDED.subtotal,
	tax_amount = EXCLUDED.tax_amount,
	total = EXCLUDED.total,
	line_items = EXCLUDED.line_items,
	confidence = EXCLUDED.confidence,
	page_count = EXCLUDED.page_count,
	bounding_boxes = EXCLUDED.bounding_boxes,
	field_confidence = EXCLUDED.field_confidence,
	needs_review = EXCLUDED.needs_review,
	updated_at = EXCLUDED.updated_at`

func (r *documentRepo) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("documentRepo.UpsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range docs {
		row, err := toRow(&docs[i])
		if err != nil {
			return fmt.Errorf("documentRepo.UpsertBatch: %w", err)
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, upsertQuery, row); err != nil {
			return fmt.Errorf("documentRepo.UpsertBatch %s: %w", row.SourceURI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("documentRepo.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *documentRepo) GetBySourceURI(ctx context.Context, sourceURI string) (*domain.Document, error) {
	var row documentRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM documents WHERE source_uri = $1", sourceURI)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetBySourceURI: %w", err)
	}
	return row.toDomain()
}

func (r *documentRepo) ListNeedsReview(ctx context.Context, limit int) ([]domain.Document, error) {
	var rows []documentRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM documents WHERE needs_review = TRUE
		 ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListNeedsReview: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("documentRepo.ListNeedsReview: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
