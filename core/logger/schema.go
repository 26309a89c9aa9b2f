package logger

import "strings"

// Canonical values of the level, status and outcome fields. Anything else is
// passed through (level, status) or dropped (outcome).
var (
	levelAliases = map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"fatal":   "FATAL",
	}
	statusValues  = set("ok", "fail", "skip", "retry", "cancelled")
	outcomeValues = set("ok", "fail", "cancelled", "empty", "no_mmr", "refused")
)

// defaultKeyOrder puts correlation and result fields first; keys not listed
// follow alphabetically.
var defaultKeyOrder = strings.Fields(`
	ts level component event status
	rid rid_full ts_unix_nano update_id user_id chat_id chat_type
	handler op cb_key step from to kind
	search_id outcome duration_ms results delta search_mode position
	chunks profiles username mode
	driver listen public_url http_code db host port
	err err_code cause retryable attempts backoff_ms
`)

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if canon, ok := levelAliases[strings.ToLower(level)]; ok {
		return canon
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases status and reports whether it is canonical.
func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	_, ok := statusValues[status]
	return status, ok
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	_, ok := outcomeValues[outcome]
	return outcome, ok
}
