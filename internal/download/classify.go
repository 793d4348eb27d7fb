package download

import "strings"

// maxDiagnosticLen caps the raw error text carried by KindUnknown failures.
const maxDiagnosticLen = 150

// classifyRules maps extractor error text to failure kinds. Checked in
// order; the first matching substring wins.
var classifyRules = []struct {
	sub  string
	kind Kind
}{
	{"video unavailable", KindNotAvailable},
	{"not available", KindNotAvailable},
	{"private", KindPrivate},
	{"sign in", KindAuthRequired},
	{"login", KindAuthRequired},
	{"copyright", KindCopyrightBlocked},
	{"age", KindAgeRestricted},
	{"geo", KindGeoBlocked},
	{"country", KindGeoBlocked},
}

// Classify maps raw extractor error text into the failure taxonomy.
// Matching is case-insensitive; unmatched text falls through to KindUnknown
// with a truncated diagnostic.
func Classify(raw string) *Failure {
	lower := strings.ToLower(raw)
	for _, r := range classifyRules {
		if strings.Contains(lower, r.sub) {
			return &Failure{Kind: r.kind, Message: truncate(raw, maxDiagnosticLen)}
		}
	}
	return &Failure{Kind: KindUnknown, Message: truncate(raw, maxDiagnosticLen)}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
