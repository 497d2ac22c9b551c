package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// DocumentType tags both uploaded documents and reference corpus material.
type DocumentType string

const (
	DocumentTypeCV             DocumentType = "cv"
	DocumentTypeProjectReport  DocumentType = "project_report"
	DocumentTypeJobDescription DocumentType = "job_description"
	DocumentTypeCaseStudy      DocumentType = "case_study"
	DocumentTypeScoringRubric  DocumentType = "scoring_rubric"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeCV, DocumentTypeProjectReport, DocumentTypeJobDescription,
		DocumentTypeCaseStudy, DocumentTypeScoringRubric:
		return true
	}
	return false
}

// Document is an uploaded candidate file after text extraction.
type Document struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Type         DocumentType `gorm:"type:varchar(32);index" json:"type"`
	OriginalName string       `gorm:"type:varchar(255)" json:"original_name"`
	Content      string       `gorm:"type:text" json:"-"`
	ChunkCount   int          `json:"chunk_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DocumentChunk is one indexed passage. Reference corpus chunks have an empty DocumentID.
type DocumentChunk struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DocumentID   string          `gorm:"type:varchar(64);index" json:"document_id"`
	DocumentType DocumentType    `gorm:"type:varchar(32);index" json:"document_type"`
	Position     int             `json:"position"`
	Content      string          `gorm:"type:text" json:"content"`
	Embedding    pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (c *DocumentChunk) TableName() string {
	return "document_chunks"
}
