package templates

import "strings"

// migrateRecord applies one-time schema upgrades to a raw template record
// loaded from the settings file. It runs at load time only; the in-memory
// model never sees legacy keys.
//
// Records written before the "symbol" field existed carried a
// "default_symbol" ending in "normal.svg" (the symbol's normal-state
// variant). Those inherit the default symbol with the state suffix dropped.
func migrateRecord(rec map[string]any) map[string]any {
	if _, ok := rec["symbol"]; !ok {
		symbol := DefaultSymbol
		if ds, ok := rec["default_symbol"].(string); ok && ds != "" {
			symbol = ds
			if strings.HasSuffix(symbol, "normal.svg") && len(symbol) > len("normal.svg") {
				// "router_normal.svg" -> "router.svg": the separator
				// before "normal.svg" goes too.
				symbol = symbol[:len(symbol)-len("normal.svg")-1] + ".svg"
			}
		}
		rec["symbol"] = symbol
	}
	delete(rec, "default_symbol")
	return rec
}
