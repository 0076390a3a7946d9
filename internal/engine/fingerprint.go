package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

// cacheVersion is bumped whenever rule behavior changes in a way that
// invalidates stored results.
const cacheVersion = "1"

// ContentHash computes a short hash of file content.
func ContentHash(src []byte) string {
	h := sha256.Sum256(src)
	return hex.EncodeToString(h[:16])
}

// Fingerprint identifies everything besides file content that affects a
// file's diagnostics: the enabled rules, their effective severities and
// options, the vocabulary and noqa handling.
func Fingerprint(checker *lint.Checker, cfg *lint.Config, noqa bool) string {
	if cfg == nil {
		cfg = lint.NewConfig()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "v%s;noqa=%t\n", cacheVersion, noqa)
	for _, rule := range checker.Rules() {
		id := rule.ID()
		// json.Marshal sorts map keys, so option maps hash stably.
		opts, _ := json.Marshal(cfg.GetRuleOptions(id))
		fmt.Fprintf(&b, "%s=%s %s\n", id, cfg.GetSeverity(id, rule.DefaultSeverity()), opts)
	}

	vocab := checker.Vocabulary()
	fmt.Fprintf(&b, "mapping=%s\n", strings.Join(vocab.MappingNames(), ","))
	fmt.Fprintf(&b, "relationship=%s\n", strings.Join(vocab.RelationshipNames(), ","))
	for _, name := range vocab.LegacyCollections() {
		repl, _ := vocab.LegacyCollection(name)
		fmt.Fprintf(&b, "collection=%s:%s\n", name, repl)
	}
	for _, name := range vocab.LegacyKeywords() {
		repl, _ := vocab.LegacyKeyword(name)
		fmt.Fprintf(&b, "keyword=%s:%s\n", name, repl)
	}

	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:8])
}
