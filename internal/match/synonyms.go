package match

// Synonyms maps a canonical skill to the spellings treated as equivalent.
type Synonyms map[string][]string

// DefaultSynonyms is the built-in synonym table.
var DefaultSynonyms = Synonyms{
	"javascript": {"js", "javascript", "ecmascript"},
	"typescript": {"ts", "typescript"},
	"node.js":    {"nodejs", "node", "node.js"},
	"react.js":   {"react", "reactjs", "react.js"},
	"vue.js":     {"vue", "vuejs", "vue.js"},
	"angular":    {"angular", "angularjs"},
	"python":     {"python", "py"},
	"java":       {"java"},
	"c++":        {"cpp", "c++", "cplusplus"},
	"c#":         {"csharp", "c#", "dotnet"},
	"php":        {"php"},
	"ruby":       {"ruby", "rb"},
	"go":         {"golang", "go"},
	"rust":       {"rust"},
	"swift":      {"swift"},
	"kotlin":     {"kotlin"},
	"mongodb":    {"mongo", "mongodb"},
	"postgresql": {"postgres", "postgresql"},
	"mysql":      {"mysql"},
	"redis":      {"redis"},
	"docker":     {"docker", "containerization"},
	"kubernetes": {"k8s", "kubernetes"},
	"aws":        {"aws", "amazon web services"},
	"azure":      {"azure", "microsoft azure"},
	"gcp":        {"gcp", "google cloud"},
	"git":        {"git", "version control"},
	"html":       {"html", "html5"},
	"css":        {"css", "css3"},
	"sass":       {"sass", "scss"},
	"webpack":    {"webpack"},
	"express":    {"express", "expressjs"},
	"django":     {"django"},
	"flask":      {"flask"},
	"spring":     {"spring", "spring boot"},
	"laravel":    {"laravel"},
	"rails":      {"rails", "ruby on rails"},
}

// index is an alias → groups lookup built once from a Synonyms table.
type index struct {
	groups  [][]string
	byAlias map[string][]int
}

func newIndex(s Synonyms) index {
	idx := index{byAlias: make(map[string][]int)}
	for _, aliases := range s {
		g := len(idx.groups)
		idx.groups = append(idx.groups, aliases)
		for _, a := range aliases {
			idx.byAlias[a] = append(idx.byAlias[a], g)
		}
	}
	return idx
}

// related reports whether word shares a synonym group with any user skill.
func (idx index) related(word string, skills map[string]struct{}) bool {
	for _, g := range idx.byAlias[word] {
		for _, alias := range idx.groups[g] {
			if _, ok := skills[alias]; ok {
				return true
			}
		}
	}
	return false
}
