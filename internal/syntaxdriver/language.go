// Package syntaxdriver wraps go-tree-sitter with one parser instance per
// supported language, each guarded by its own mutex since a *sitter.Parser
// is not safe for concurrent use.
package syntaxdriver

// LanguageID names one of the language families adapters extract from.
type LanguageID string

const (
	LanguageGo         LanguageID = "go"
	LanguagePython     LanguageID = "python"
	LanguageRust       LanguageID = "rust"
	LanguageJava       LanguageID = "java"
	LanguageCpp        LanguageID = "cpp"
	LanguageJavaScript LanguageID = "javascript"
	LanguageTypeScript LanguageID = "typescript"
	LanguageTSX        LanguageID = "tsx"
)

// extensionLanguages maps a lowercase file extension (with leading dot) to
// the language family that parses it.
var extensionLanguages = map[string]LanguageID{
	".go":   LanguageGo,
	".py":   LanguagePython,
	".pyi":  LanguagePython,
	".rs":   LanguageRust,
	".java": LanguageJava,
	".c":    LanguageCpp,
	".h":    LanguageCpp,
	".cc":   LanguageCpp,
	".cpp":  LanguageCpp,
	".cxx":  LanguageCpp,
	".hpp":  LanguageCpp,
	".hh":   LanguageCpp,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".mts":  LanguageTypeScript,
	".tsx":  LanguageTSX,
}

// LanguageForExtension resolves a file extension to a language id. ok is
// false when the extension isn't recognized.
func LanguageForExtension(ext string) (LanguageID, bool) {
	id, ok := extensionLanguages[ext]
	return id, ok
}
