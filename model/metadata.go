package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/alexphommasathit/policyqa/helper"
)

// ChunkMetadata is the JSONB metadata stored alongside every chunk. The
// known fields are what the answer formatter relies on; Extra tolerates
// schema evolution without losing unknown keys on a read-modify-write.
type ChunkMetadata struct {
	DocumentTitle  string
	DocumentStatus DocumentStatus
	// ChunkNumber is 1-based, for display ("Chunk 2 of 7")
	ChunkNumber  int
	TotalChunks  int
	SectionTitle *string
	Extra        map[string]interface{}
}

// MarshalJSON flattens the known fields and Extra into one JSON object.
// Known fields win over colliding Extra keys.
func (m ChunkMetadata) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(m.Extra)+5)
	for k, v := range m.Extra {
		fields[k] = v
	}
	fields["document_title"] = m.DocumentTitle
	fields["document_status"] = m.DocumentStatus
	fields["chunk_number"] = m.ChunkNumber
	fields["total_chunks"] = m.TotalChunks
	fields["section_title"] = m.SectionTitle
	return json.Marshal(fields)
}

// UnmarshalJSON splits a JSON object into the known fields and Extra
func (m *ChunkMetadata) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*m = ChunkMetadata{}

	if raw, ok := fields["document_title"]; ok {
		if err := json.Unmarshal(raw, &m.DocumentTitle); err != nil {
			return err
		}
		delete(fields, "document_title")
	}
	if raw, ok := fields["document_status"]; ok {
		if err := json.Unmarshal(raw, &m.DocumentStatus); err != nil {
			return err
		}
		delete(fields, "document_status")
	}
	if raw, ok := fields["chunk_number"]; ok {
		if err := json.Unmarshal(raw, &m.ChunkNumber); err != nil {
			return err
		}
		delete(fields, "chunk_number")
	}
	if raw, ok := fields["total_chunks"]; ok {
		if err := json.Unmarshal(raw, &m.TotalChunks); err != nil {
			return err
		}
		delete(fields, "total_chunks")
	}
	if raw, ok := fields["section_title"]; ok {
		if err := json.Unmarshal(raw, &m.SectionTitle); err != nil {
			return err
		}
		delete(fields, "section_title")
	}

	if len(fields) > 0 {
		m.Extra = make(map[string]interface{}, len(fields))
		for k, raw := range fields {
			var v interface{}
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			m.Extra[k] = v
		}
	}

	return nil
}

// Value implements the driver.Valuer interface for database storage
func (m ChunkMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *ChunkMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ChunkMetadata{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}
