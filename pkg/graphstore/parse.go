package graphstore

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	dbtype "github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

// parseRecords traverses result rows, deduplicating nodes and edges by
// their stable "id" property (falling back to the driver's internal
// element identity when "id" is absent), and drops any edge whose
// endpoints were not emitted as nodes in the same response — spec §4.3.
//
// Two passes are required: nodes must all be collected (and their element
// ids mapped to stable keys) before an edge's endpoints can be resolved,
// since a RETURN clause may project the edge before one of its endpoints.
func parseRecords(records []*neo4j.Record) *models.GraphPayload {
	nodes := map[string]models.NodeDTO{}
	nodeOrder := make([]string, 0)
	elementIDToKey := map[string]string{}

	collectNode := func(n dbtype.Node) {
		key := nodeKey(n)
		elementIDToKey[n.ElementId] = key
		if _, seen := nodes[key]; !seen {
			nodes[key] = nodeDTO(key, n)
			nodeOrder = append(nodeOrder, key)
		}
	}

	for _, record := range records {
		for _, value := range record.Values {
			switch v := value.(type) {
			case dbtype.Node:
				collectNode(v)
			case dbtype.Path:
				for _, n := range v.Nodes {
					collectNode(n)
				}
			}
		}
	}

	type rawEdge struct {
		key     string
		startID string
		endID   string
		rel     dbtype.Relationship
	}
	edgesByKey := map[string]rawEdge{}
	edgeOrder := make([]string, 0)

	collectRel := func(r dbtype.Relationship) {
		key := relKey(r)
		if _, seen := edgesByKey[key]; !seen {
			edgesByKey[key] = rawEdge{key: key, startID: r.StartElementId, endID: r.EndElementId, rel: r}
			edgeOrder = append(edgeOrder, key)
		}
	}

	for _, record := range records {
		for _, value := range record.Values {
			switch v := value.(type) {
			case dbtype.Relationship:
				collectRel(v)
			case dbtype.Path:
				for _, r := range v.Relationships {
					collectRel(r)
				}
			}
		}
	}

	payload := &models.GraphPayload{Nodes: make([]models.NodeDTO, 0, len(nodeOrder))}
	for _, key := range nodeOrder {
		payload.Nodes = append(payload.Nodes, nodes[key])
	}

	for _, key := range edgeOrder {
		re := edgesByKey[key]
		sourceKey, sourceOK := elementIDToKey[re.startID]
		targetKey, targetOK := elementIDToKey[re.endID]
		if !sourceOK || !targetOK {
			slog.Warn("dropping edge with endpoint missing from node set", "edge_id", key)
			continue
		}
		payload.Edges = append(payload.Edges, edgeDTO(key, re.rel, sourceKey, targetKey))
	}

	return payload
}

func nodeKey(n dbtype.Node) string {
	if id, ok := n.Props["id"].(string); ok && id != "" {
		return id
	}
	return n.ElementId
}

func relKey(r dbtype.Relationship) string {
	if id, ok := r.Props["id"].(string); ok && id != "" {
		return id
	}
	return r.ElementId
}

func nodeDTO(id string, n dbtype.Node) models.NodeDTO {
	dto := models.NodeDTO{
		ID:          id,
		Name:        stringProp(n.Props, "name"),
		Type:        stringProp(n.Props, "type"),
		Description: stringProp(n.Props, "description"),
		NoteIDs:     noteIDs(n.Props),
	}
	if campaignUUID, ok := n.Props["campaign_uuid"].(string); ok {
		if parsed, err := uuid.Parse(campaignUUID); err == nil {
			dto.CampaignUUID = parsed
		}
	}
	return dto
}

func edgeDTO(id string, r dbtype.Relationship, sourceKey, targetKey string) models.EdgeDTO {
	return models.EdgeDTO{
		ID:          id,
		Source:      sourceKey,
		Target:      targetKey,
		Label:       r.Type,
		Description: stringProp(r.Props, "description"),
		Reasoning:   stringProp(r.Props, "reasoning"),
		NoteIDs:     noteIDs(r.Props),
	}
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// noteIDs reads note_ids (list) or lifts a scalar note_id into a
// one-element list, per spec §4.3's backward-compatibility rule.
func noteIDs(props map[string]any) []uuid.UUID {
	if list, ok := props["note_ids"].([]any); ok {
		return parseUUIDList(list)
	}
	if scalar, ok := props["note_id"].(string); ok {
		if parsed, err := uuid.Parse(scalar); err == nil {
			return []uuid.UUID{parsed}
		}
	}
	return nil
}

func parseUUIDList(raw []any) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		parsed, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out
}
