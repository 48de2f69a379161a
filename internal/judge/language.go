package judge

// Language holds the static mapping from our language tag to the sandbox
// service's language identifier.
type Language struct {
	Tag       string
	Name      string
	SandboxID int
}

var languages = map[string]Language{
	"javascript": {Tag: "javascript", Name: "JavaScript (Node.js)", SandboxID: 63},
	"python":     {Tag: "python", Name: "Python 3", SandboxID: 71},
	"java":       {Tag: "java", Name: "Java", SandboxID: 62},
	"cpp":        {Tag: "cpp", Name: "C++ (GCC)", SandboxID: 54},
}

// LookupLanguage returns the static language entry for a tag.
func LookupLanguage(tag string) (Language, bool) {
	l, ok := languages[tag]
	return l, ok
}

// SupportedLanguages returns the fixed set of language tags.
func SupportedLanguages() []string {
	tags := make([]string, 0, len(languages))
	for tag := range languages {
		tags = append(tags, tag)
	}
	return tags
}
