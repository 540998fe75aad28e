package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AdmitsWellFormedReadQuery(t *testing.T) {
	q := `MATCH (a:Campaign1_Artifact {id: $artifactId, campaign_uuid: $campaignUuid})
OPTIONAL MATCH (a)-[r]-(b:Campaign1_Artifact) WHERE b.campaign_uuid = $campaignUuid
RETURN a, r, b`

	result := Validate(q)
	assert.True(t, result.Valid, result.Reason)
}

func TestValidate_RejectsDetachDelete(t *testing.T) {
	result := Validate(`MATCH (a) DETACH DELETE a RETURN a`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "forbidden token")
}

func TestValidate_RejectsEachForbiddenToken(t *testing.T) {
	cases := []string{
		`MATCH (a) CREATE (b) RETURN a`,
		`MATCH (a) MERGE (b) RETURN a`,
		`MATCH (a) SET a.name = "x" RETURN a`,
		`MATCH (a) REMOVE a.name RETURN a`,
		`MATCH (a) DROP INDEX foo RETURN a`,
	}
	for _, q := range cases {
		result := Validate(q)
		assert.False(t, result.Valid, q)
	}
}

func TestValidate_RejectsMissingMatch(t *testing.T) {
	result := Validate(`RETURN 1 AS x`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "MATCH")
}

func TestValidate_RejectsMultipleReturns(t *testing.T) {
	result := Validate(`MATCH (a {campaign_uuid: $campaignUuid}) RETURN a UNION MATCH (b {campaign_uuid: $campaignUuid}) RETURN b`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "RETURN")
}

func TestValidate_RejectsMissingCampaignParameter(t *testing.T) {
	result := Validate(`MATCH (a) RETURN a`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "campaignUuid")
}

func TestValidate_RejectsCampaignParameterTokenWithoutPredicateBinding(t *testing.T) {
	result := Validate(`MATCH (a) RETURN a, $campaignUuid`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "predicate")
}

func TestValidate_AdmitsWhereClauseCampaignPredicateBinding(t *testing.T) {
	result := Validate(`MATCH (a) WHERE a.campaign_uuid = $campaignUuid RETURN a`)
	assert.True(t, result.Valid, result.Reason)
}

func TestValidate_RejectsUnknownProcedureCall(t *testing.T) {
	result := Validate(`CALL apoc.export.json.all() YIELD file MATCH (a {campaign_uuid: $campaignUuid}) RETURN a, file`)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "allowlist")
}

func TestValidate_AdmitsAllowlistedProcedureCall(t *testing.T) {
	result := Validate(`CALL db.labels() YIELD label MATCH (a {campaign_uuid: $campaignUuid}) RETURN a, label`)
	assert.True(t, result.Valid, result.Reason)
}
