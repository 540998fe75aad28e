// Package cypher implements the Cypher Validator (C1): a static,
// syntactic check that a generated graph query is read-only. It is the
// first line of defense; the authoritative safety property comes from
// executing the query in a read-only transaction (pkg/graphstore).
package cypher

import (
	"regexp"
	"strings"
)

// forbiddenTokens are checked against the uppercased query text. Any match
// rejects the query outright.
var forbiddenTokens = []string{
	"CREATE",
	"MERGE",
	"DELETE",
	"SET",
	"REMOVE",
	"DROP",
	"DETACH DELETE",
	"CREATE INDEX",
	"CREATE CONSTRAINT",
}

// allowedProcedures is the manual allowlist for CALL {...} sub-queries and
// procedure calls. Spec §9 open question 2 closes the CALL gap: any CALL
// requires a manual allowlist rather than a blanket ban or blanket allow.
var allowedProcedures = map[string]bool{
	"db.labels":            true,
	"db.relationshiptypes": true,
	"db.propertykeys":      true,
}

var (
	matchRe  = regexp.MustCompile(`(?i)\bMATCH\b`)
	returnRe = regexp.MustCompile(`(?i)\bRETURN\b`)
	callRe   = regexp.MustCompile(`(?i)\bCALL\s*\{?\s*([a-zA-Z0-9_.]+)`)

	campaignUUIDRe = regexp.MustCompile(`\$campaignUuid\b`)
	// campaignUUIDPredicateRe matches a campaign_uuid property bound to the
	// $campaignUuid parameter, either as a map-literal property
	// ({campaign_uuid: $campaignUuid}) or a WHERE-clause predicate
	// (campaign_uuid = $campaignUuid). A bare $campaignUuid token elsewhere
	// in the query (e.g. only in the RETURN clause) does not actually scope
	// the query to one campaign.
	campaignUUIDPredicateRe = regexp.MustCompile(`(?i)campaign_uuid\s*[:=]\s*\$campaignUuid\b`)
)

// Result is the outcome of validating a candidate query.
type Result struct {
	Valid  bool
	Reason string // human-readable reason, populated iff !Valid
}

// Validate applies the three admission rules from spec §4.1:
//  1. no forbidden write tokens anywhere in the (case-insensitive) text
//  2. at least one MATCH and exactly one top-level RETURN
//  3. a $campaignUuid parameter token present, bound to a campaign_uuid
//     property predicate somewhere in the query
func Validate(query string) Result {
	upper := strings.ToUpper(query)

	for _, token := range forbiddenTokens {
		if strings.Contains(upper, token) {
			return Result{Valid: false, Reason: "query contains forbidden token: " + token}
		}
	}

	for _, match := range callRe.FindAllStringSubmatch(query, -1) {
		procedure := strings.ToLower(match[1])
		if !allowedProcedures[procedure] {
			return Result{Valid: false, Reason: "query calls a procedure not on the read-only allowlist: " + match[1]}
		}
	}

	if !matchRe.MatchString(query) {
		return Result{Valid: false, Reason: "query has no MATCH clause"}
	}

	returnCount := len(returnRe.FindAllString(query, -1))
	if returnCount == 0 {
		return Result{Valid: false, Reason: "query has no RETURN clause"}
	}
	if returnCount > 1 {
		return Result{Valid: false, Reason: "query has more than one top-level RETURN clause"}
	}

	if !campaignUUIDRe.MatchString(query) {
		return Result{Valid: false, Reason: "query does not reference the $campaignUuid parameter"}
	}
	if !campaignUUIDPredicateRe.MatchString(query) {
		return Result{Valid: false, Reason: "query references $campaignUuid but does not bind it to a campaign_uuid predicate"}
	}

	return Result{Valid: true}
}
