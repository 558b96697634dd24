package documents

import (
	"encoding/json"
	"strings"
)

const (
	envelopeMarker   = "METADATA:"
	contentSeparator = "\n\nCONTENT:\n"
)

// envelope is the self-describing header an ingested row may carry:
//
//	METADATA: {"table_name": "customers", "doc_id": 7, ...}
//
//	CONTENT:
//	<document text>
//
// The metadata re-keys the row by its logical document id (one physical
// embedding batch can be re-keyed by logical index) and records the source
// table the document came from.
type envelope struct {
	Category  string
	LogicalID *int64
	Content   string
}

// parseEnvelope decodes the metadata envelope. ok is false when the row is
// not enveloped or the envelope is unparseable; callers then treat the whole
// raw string as unlabeled content keyed by the physical row id.
func parseEnvelope(raw string) (envelope, bool) {
	if !strings.HasPrefix(raw, envelopeMarker) {
		return envelope{}, false
	}

	head, body, found := strings.Cut(raw, contentSeparator)
	if !found {
		return envelope{}, false
	}

	metaJSON := strings.TrimSpace(strings.TrimPrefix(head, envelopeMarker))

	var meta struct {
		TableName string `json:"table_name"`
		DocID     *int64 `json:"doc_id"`
	}
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return envelope{}, false
	}

	category := meta.TableName
	if category == "" {
		category = "unknown"
	}

	return envelope{Category: category, LogicalID: meta.DocID, Content: body}, true
}
