package panel

import "strings"

// Legacy command-name derivation. Older console builds addressed panel
// actions by string-built function names (openNoteForEdit,
// closeNotesPanel, submitNotesForm) synthesized from the plugin's
// kebab-case plural name. The capability table has replaced name
// synthesis for direct calls, but saved shortcuts and audit entries still
// carry the old command strings, so the derivation is kept bit-for-bit,
// quirks included:
//
//   - open/view/edit commands use the CAPITALIZED SINGULAR form
//     (openNoteForEdit), while close commands keep the CAPITALIZED
//     PLURAL form (closeNotesPanel).
//   - singularization is a naive trailing-"s" strip; already-singular
//     names pass through unchanged.
//   - an explicit override table handles plugins that never fit the
//     pattern; it is an exception list, not a runtime fallback.

// Mode names panel open modes in legacy commands.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeView   Mode = "view"
)

// openOverrides routes specific plugins' open commands through a name
// that does not derive from the plugin name. woocommerce-products panels
// were historically edited through the Woo settings surface.
var openOverrides = map[string]string{
	"woocommerce-products": "WooSettings",
}

// DeriveFunctionName builds the legacy command name for an action on a
// plugin. action is "open", "close", "submit", or "cancel"; mode is only
// meaningful for "open".
//
//	DeriveFunctionName("open", "edit", "notes")                → "openNoteForEdit"
//	DeriveFunctionName("open", "edit", "woocommerce-products") → "openWooSettingsForEdit"
//	DeriveFunctionName("close", "", "notes")                   → "closeNotesPanel"
//	DeriveFunctionName("submit", "", "notes")                  → "submitNotesForm"
func DeriveFunctionName(action string, mode Mode, pluralName string) string {
	switch action {
	case "open":
		base, ok := openOverrides[pluralName]
		if !ok {
			base = capitalize(singularize(camelCase(pluralName)))
		}
		return action + base + "For" + capitalize(string(mode))
	case "close":
		// Close keeps the plural form; a long-standing asymmetry with
		// the open commands that stored shortcuts depend on.
		return action + capitalize(camelCase(pluralName)) + "Panel"
	case "submit", "cancel":
		return action + capitalize(camelCase(pluralName)) + "Form"
	default:
		return action + capitalize(camelCase(pluralName))
	}
}

// camelCase joins kebab-case segments, upper-casing each letter that
// follows a hyphen: "woocommerce-products" → "woocommerceProducts".
func camelCase(kebab string) string {
	segments := strings.Split(kebab, "-")
	var b strings.Builder
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == 0 {
			b.WriteString(seg)
		} else {
			b.WriteString(capitalize(seg))
		}
	}
	return b.String()
}

// singularize strips a single trailing "s" if present. Deliberately
// naive: names not ending in a bare "s" pass through untouched.
func singularize(s string) string {
	if strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
